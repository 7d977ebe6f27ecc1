package domain

import "errors"

var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrAuthorization          = errors.New("not authorized")
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrAlreadyRated           = errors.New("booking already rated")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrInvalidState           = errors.New("invalid state")
	ErrUnavailable            = errors.New("store unavailable")
)

// Stable error kinds surfaced at the API boundary.
const (
	KindValidation             = "validation"
	KindNotFound               = "not_found"
	KindAuthorization          = "authorization"
	KindIllegalTransition      = "illegal_transition"
	KindAlreadyRated           = "already_rated"
	KindConcurrentModification = "concurrent_modification"
	KindInvalidState           = "invalid_state"
	KindUnavailable            = "unavailable"
	KindInternal               = "internal"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrValidation, KindValidation},
	{ErrNotFound, KindNotFound},
	{ErrAuthorization, KindAuthorization},
	{ErrIllegalTransition, KindIllegalTransition},
	{ErrAlreadyRated, KindAlreadyRated},
	{ErrConcurrentModification, KindConcurrentModification},
	{ErrInvalidState, KindInvalidState},
	{ErrUnavailable, KindUnavailable},
}

// ErrorKind maps err onto its stable kind, or KindInternal when it is not a domain error.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
