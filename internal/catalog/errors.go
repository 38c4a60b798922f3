package catalog

import "errors"

var (
	// ErrServiceNotFound is returned when a requested service id does not
	// exist, is inactive, or belongs to another tenant.
	ErrServiceNotFound = errors.New("service not found")
)
