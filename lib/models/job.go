package models

import (
	"database/sql"

	"gorm.io/gorm"
)

const (
	JobPending = "pending"
	JobSent    = "sent"
	JobFailed  = "failed"
)

const (
	MutationCreated = "created"
	MutationUpdated = "updated"
)

// DispatchJob is the durable record of one post mutation awaiting fan-out.
// The request path only writes this row; the dispatcher drains it.
type DispatchJob struct {
	gorm.Model
	PostID        uint   `gorm:"index"`
	Category      string
	Mutation      string // created or updated
	Status        string `gorm:"default:pending;index"`
	Attempts      int
	NextAttemptAt sql.NullTime
	Delivered     int
	Undeliverable int
}

type DispatchJobs []DispatchJob
