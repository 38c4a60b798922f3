package staff

import "errors"

var (
	// ErrMemberNotFound is returned when a staff member does not exist
	// for the tenant.
	ErrMemberNotFound = errors.New("staff member not found")
)
