package model

import "time"

// RoleEarnings is the sum of paid job prices grouped by the role of
// the contract owner.
type RoleEarnings struct {
	Role  ProfileRole
	Total float64
}

// ClientEarnings is one row of the best-clients ranking.
type ClientEarnings struct {
	ProfileID int64
	Name      string
	TotalPaid float64
}

// EarningsReport is the input of the admin report exports. The period
// is carried through to the document for reference; job earnings are
// not timestamped, so it does not narrow the aggregates.
type EarningsReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	ByRole      []RoleEarnings
	TopClients  []ClientEarnings
}

// Receipt is everything the payment receipt document needs.
type Receipt struct {
	Payment    Payment
	Job        Job
	Contract   Contract
	Payer      Profile
	Contractor Profile
}
