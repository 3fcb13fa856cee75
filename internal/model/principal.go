package model

// Principal is the authenticated identity extracted from the access
// token by the auth middleware.
type Principal struct {
	ProfileID int64
	Role      ProfileRole
}

func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}

func (p Principal) IsContractor() bool {
	return p.Role == RoleContractor
}
