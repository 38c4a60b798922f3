package appointments

import "errors"

var (
	// ErrConflict is returned when a commit or reschedule would overlap
	// an existing confirmed/completed appointment for the same staff
	// member. Recoverable: refresh the slot list and re-select.
	ErrConflict = errors.New("appointment range conflicts with an existing booking")

	// ErrAppointmentNotFound is returned when an appointment does not
	// exist for the tenant.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned for status changes that leave a
	// terminal status or target an unknown one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStoreUnavailable wraps infrastructure failures from the
	// persistence layer. The engine never retries these itself; retrying
	// an ambiguous partial failure risks a duplicate booking.
	ErrStoreUnavailable = errors.New("appointment store unavailable")

	// ErrStaffNotBookable is returned when the target staff member is
	// inactive or not booking-eligible.
	ErrStaffNotBookable = errors.New("staff member is not bookable")

	// ErrOutsideWorkingHours is returned when the requested range does
	// not lie within the staff member's working window for that weekday.
	ErrOutsideWorkingHours = errors.New("requested range is outside working hours")

	// ErrLeadTimeViolated is returned when the requested start is before
	// now plus the minimum lead time.
	ErrLeadTimeViolated = errors.New("requested start violates minimum lead time")
)

func isConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
