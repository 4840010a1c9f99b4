package ledger

import "errors"

// User-facing errors: surfaced verbatim to the caller, never retried.
var (
	ErrInstanceNotFound    = errors.New("class instance not found")
	ErrInstanceNotBookable = errors.New("this class is no longer available for booking")
	ErrInstanceInPast      = errors.New("cannot book a class that has already occurred")
	ErrAlreadyBooked       = errors.New("you have already booked this class")
	ErrClassFull           = errors.New("class is full")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrForbidden           = errors.New("this is not your booking")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrNotCancellable      = errors.New("only a confirmed booking can be cancelled")
	ErrTooLate             = errors.New("too late to cancel")
)

// ErrServiceUnavailable is returned when the bounded retry around an atomic
// ledger operation exhausts its attempts on transient store conflicts.
var ErrServiceUnavailable = errors.New("service temporarily unavailable, please retry")
