package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/newsdesk/newsdesk/config"
	"github.com/newsdesk/newsdesk/lib"
	"github.com/newsdesk/newsdesk/lib/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, svc *lib.Service) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, svc)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go srv.ListenAndServe()
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, svc *lib.Service) http.Handler {
	ctrl := &controller{log, svc}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", ctrl.register)
		r.Post("/login", ctrl.login)

		r.Get("/posts", ctrl.listPosts)
		r.Get("/posts/{post_id}", ctrl.viewPost)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(cfg))

			r.Post("/users/me/author", ctrl.becomeAuthor)
			r.Post("/subscriptions", ctrl.subscribe)

			r.With(requirePermission(lib.PermAddPost)).Post("/news", ctrl.createNews)
			r.With(requirePermission(lib.PermAddPost)).Post("/articles", ctrl.createArticle)
			r.With(requirePermission(lib.PermChangePost)).Put("/posts/{post_id}", ctrl.updatePost)
			r.With(requirePermission(lib.PermDeletePost)).Delete("/posts/{post_id}", ctrl.deletePost)
		})
	})
	r.Get("/unsubscribe/{token}", ctrl.unsubscribe)

	return r
}

type controller struct {
	log *zap.Logger
	svc *lib.Service
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), status)
	} else {
		w.WriteHeader(status)
	}
}

func (ctrl *controller) rejectOnErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctrl.reject(w, http.StatusNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		ctrl.reject(w, http.StatusConflict, err)
	case errors.Is(err, lib.ErrBadCredentials):
		ctrl.reject(w, http.StatusUnauthorized, err)
	default:
		ctrl.reject(w, http.StatusInternalServerError, err)
	}
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, body any) {
	if b, err := json.Marshal(body); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		ctrl.log.Sugar().Error("Request failed", "error", err)
		return
	} else {
		w.WriteHeader(status)
		if b != nil {
			w.Write(b)
		}
	}
}

func (ctrl *controller) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" {
		ctrl.reject(w, 400, errors.New("Email is required"))
		return
	}
	if password == "" {
		ctrl.reject(w, 400, errors.New("Password is required"))
		return
	}

	user, err := ctrl.svc.Register(ctx, email, password)
	if err != nil {
		ctrl.rejectOnErr(w, err)
		return
	}
	ctrl.resolve(w, http.StatusCreated, UserView{}.From(user))
}

func (ctrl *controller) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := ctrl.svc.Login(ctx, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		ctrl.rejectOnErr(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"token": token})
}

func (ctrl *controller) becomeAuthor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := principalFrom(ctx)

	user, err := ctrl.svc.BecomeAuthor(ctx, principal.UserID)
	if err != nil {
		ctrl.rejectOnErr(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, UserView{}.From(user))
}

func (ctrl *controller) listPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := lib.PostFilter{
		Category:     q.Get("category"),
		Kind:         q.Get("kind"),
		AuthorID:     parseInt(q.Get("author_id")),
		TitleLike:    q.Get("title"),
		PostedAfter:  parseTime(q.Get("posted_after")),
		PostedBefore: parseTime(q.Get("posted_before")),
		Page:         int(parseInt(q.Get("page"))),
		PageSize:     int(parseInt(q.Get("page_size"))),
	}

	posts, err := ctrl.svc.ListPosts(ctx, filter)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, FromMany[models.Post, PostView](posts))
}

func (ctrl *controller) viewPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, err := ctrl.svc.FindPost(ctx, parseInt(chi.URLParam(r, "post_id")))
	if err != nil {
		ctrl.rejectOnErr(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, PostView{}.From(post))
}

func (ctrl *controller) createNews(w http.ResponseWriter, r *http.Request) {
	ctrl.createPost(w, r, models.KindNews)
}

func (ctrl *controller) createArticle(w http.ResponseWriter, r *http.Request) {
	ctrl.createPost(w, r, models.KindArticle)
}

func (ctrl *controller) createPost(w http.ResponseWriter, r *http.Request, kind string) {
	ctx := r.Context()
	principal, _ := principalFrom(ctx)

	post, err := ctrl.svc.CreatePost(
		ctx,
		principal.UserID,
		kind,
		r.FormValue("title"),
		r.FormValue("body"),
		r.FormValue("category"),
	)
	if err != nil {
		ctrl.reject(w, 400, err)
		return
	}
	ctrl.resolve(w, http.StatusCreated, PostView{}.From(post))
}

func (ctrl *controller) updatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, err := ctrl.svc.UpdatePost(
		ctx,
		parseInt(chi.URLParam(r, "post_id")),
		r.FormValue("title"),
		r.FormValue("body"),
		r.FormValue("category"),
	)
	if err != nil {
		ctrl.rejectOnErr(w, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, PostView{}.From(post))
}

func (ctrl *controller) deletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := ctrl.svc.DeletePost(ctx, parseInt(chi.URLParam(r, "post_id"))); err != nil {
		ctrl.rejectOnErr(w, err)
		return
	}
	ctrl.reject(w, http.StatusNoContent, nil)
}

func (ctrl *controller) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := principalFrom(ctx)

	sub, err := ctrl.svc.Subscribe(
		ctx,
		principal.UserID,
		r.FormValue("category"),
		r.FormValue("platform"),
		r.FormValue("address"),
	)
	if err != nil {
		ctrl.reject(w, 400, err)
		return
	}
	ctrl.resolve(w, http.StatusCreated, SubscriberView{}.From(sub))
}

func (ctrl *controller) unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	ok, err := ctrl.svc.Unsubscribe(ctx, token)
	if err != nil {
		ctrl.reject(w, 500, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"unsubscribed": ok})
}

func parseInt(s string) uint {
	u, _ := strconv.ParseUint(s, 10, 64)
	return uint(u)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, _ = time.Parse("2006-01-02", s)
	}
	return t
}
