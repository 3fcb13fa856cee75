package model

import "time"

type ProfileRole string

const (
	RoleClient     ProfileRole = "client"
	RoleContractor ProfileRole = "contractor"
)

func ParseProfileRole(raw string) (ProfileRole, bool) {
	switch ProfileRole(raw) {
	case RoleClient:
		return RoleClient, true
	case RoleContractor:
		return RoleContractor, true
	default:
		return "", false
	}
}

// Profile is a marketplace participant. Balance is mutated only by the
// payment and deposit services, inside a transaction.
type Profile struct {
	ID        int64
	Name      string
	Role      ProfileRole
	Balance   float64
	CreatedAt time.Time
}
