package model

import "time"

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// Contract groups jobs under a single owning client profile. Status
// transitions happen outside the ledger core; "active" means any
// status other than terminated.
type Contract struct {
	ID             int64
	OwnerProfileID int64
	Status         ContractStatus
	CreatedAt      time.Time

	Jobs []Job `gorm:"-"`
}
