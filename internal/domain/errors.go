package domain

import "errors"

var (
	// ErrRoomUnavailable covers both a missing room and one whose status is
	// not available; callers bounce to the room listing without a message.
	ErrRoomUnavailable = errors.New("room is not available")

	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// FormError is a user-facing validation failure: the handler re-renders the
// form with Message instead of failing the request.
type FormError struct {
	Message string
}

func (e *FormError) Error() string { return e.Message }

func NewFormError(msg string) *FormError { return &FormError{Message: msg} }

// AsFormError unwraps err into a FormError if it is one.
func AsFormError(err error) (*FormError, bool) {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
