package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the audit record written for every successful job
// payment. One row per job, created in the same transaction as the
// balance transfer.
type Payment struct {
	ID             uuid.UUID `gorm:"type:uuid"`
	JobID          int64
	PayerProfileID int64
	PayeeProfileID int64
	Amount         float64
	CreatedAt      time.Time
}
