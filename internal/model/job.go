package model

import "time"

// Job is a priced unit of work on a contract. PaidAmount is 0 until
// the job is paid, then equals Price; partial payment does not exist.
type Job struct {
	ID          int64
	ContractID  int64
	Description string
	Price       float64
	PaidAmount  float64
	CreatedAt   time.Time
}

func (j Job) Paid() bool {
	return j.PaidAmount != 0
}
