// Package apperr defines the error taxonomy shared by the market engine and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers that need to react to it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "state_conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a recoverable, user-reportable failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	base *Error
}

func (e *Error) Error() string {
	return e.Message
}

// Is makes an error built with WithMessage match its sentinel.
func (e *Error) Is(target error) bool {
	return e.base != nil && e.base == target
}

// WithMessage returns a copy of base carrying a more specific message.
// errors.Is still matches base.
func WithMessage(base *Error, format string, args ...any) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: fmt.Sprintf(format, args...), base: base}
}

// Invalid is WithMessage(ErrInvalidInput, ...).
func Invalid(format string, args ...any) *Error {
	return WithMessage(ErrInvalidInput, format, args...)
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation errors.
var (
	ErrInvalidInput      = newError(KindValidation, "invalid_input", "invalid input")
	ErrInvalidCoordinate = newError(KindValidation, "invalid_coordinate", "coordinates out of range")
	ErrInvalidRating     = newError(KindValidation, "invalid_rating", "rating must be an integer between 1 and 5")
	ErrCommentTooLong    = newError(KindValidation, "comment_too_long", "comment must be at most 500 characters")
	ErrWrongReviewee     = newError(KindValidation, "wrong_reviewee", "reviewee is not the user who supplied the received item")
)

// Authorization errors.
var (
	ErrNotOwner       = newError(KindAuthorization, "not_owner", "item is not owned by this user")
	ErrNotParticipant = newError(KindAuthorization, "not_participant", "user is not a participant of this trade")
	ErrNotRecipient   = newError(KindAuthorization, "not_recipient", "only the owner of the requested item can respond")
	ErrNotRequester   = newError(KindAuthorization, "not_requester", "only the requester can cancel a request")
	ErrNotReviewer    = newError(KindAuthorization, "not_reviewer", "only the reviewer can change a rating")
)

// State conflict errors.
var (
	ErrInvalidTransition = newError(KindConflict, "invalid_transition", "item status transition not allowed")
	ErrSelfTrade         = newError(KindConflict, "self_trade", "cannot trade with yourself")
	ErrItemUnavailable   = newError(KindConflict, "item_unavailable", "item is no longer available")
	ErrDuplicateRequest  = newError(KindConflict, "duplicate_request", "an identical trade request is already pending")
	ErrRequestNotPending = newError(KindConflict, "request_not_pending", "trade request is no longer pending")
	ErrTradeNotPending   = newError(KindConflict, "trade_not_pending", "trade is no longer pending")
	ErrAlreadyCompleted  = newError(KindConflict, "already_completed", "trade is already completed")
	ErrTradeNotCompleted = newError(KindConflict, "trade_not_completed", "trade must be completed before rating")
	ErrAlreadyRated      = newError(KindConflict, "already_rated", "trade already rated by this user")
	ErrSelfRating        = newError(KindConflict, "self_rating", "cannot rate yourself")
	ErrStateChanged      = newError(KindConflict, "state_changed", "record was modified concurrently")
	ErrUsernameTaken     = newError(KindConflict, "username_taken", "username already taken")
)

// Not found errors.
var (
	ErrItemNotFound    = newError(KindNotFound, "item_not_found", "item not found")
	ErrRequestNotFound = newError(KindNotFound, "request_not_found", "trade request not found")
	ErrTradeNotFound   = newError(KindNotFound, "trade_not_found", "trade not found")
	ErrRatingNotFound  = newError(KindNotFound, "rating_not_found", "rating not found")
	ErrUserNotFound    = newError(KindNotFound, "user_not_found", "user not found")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// MessageOf returns the user-facing message for err. Errors outside the
// taxonomy are not exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
