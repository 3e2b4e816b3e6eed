package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidRating, http.StatusBadRequest},
		{ErrInvalidCoordinate, http.StatusBadRequest},
		{ErrNotOwner, http.StatusForbidden},
		{ErrNotParticipant, http.StatusForbidden},
		{ErrSelfTrade, http.StatusConflict},
		{ErrAlreadyRated, http.StatusConflict},
		{ErrItemNotFound, http.StatusNotFound},
		{fmt.Errorf("accepting request 4: %w", ErrItemUnavailable), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWrappedSentinelsMatch(t *testing.T) {
	err := fmt.Errorf("item 7: %w", ErrItemUnavailable)
	if !errors.Is(err, ErrItemUnavailable) {
		t.Fatal("expected wrapped error to match ErrItemUnavailable")
	}
	if errors.Is(err, ErrDuplicateRequest) {
		t.Fatal("wrapped error should not match a different sentinel")
	}
	if CodeOf(err) != "item_unavailable" {
		t.Errorf("expected code item_unavailable, got %q", CodeOf(err))
	}
	if KindOf(err) != KindConflict {
		t.Errorf("expected conflict kind, got %s", KindOf(err))
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != "internal" {
		t.Errorf("expected internal, got %q", got)
	}
}

func TestWithMessage(t *testing.T) {
	err := fmt.Errorf("posting item: %w", Invalid("title must not be empty"))

	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("expected detailed error to match ErrInvalidInput")
	}
	if errors.Is(err, ErrInvalidRating) {
		t.Fatal("detailed error should not match another validation sentinel")
	}
	if got := MessageOf(err); got != "title must not be empty" {
		t.Errorf("expected detailed message, got %q", got)
	}
	if got := HTTPStatus(err); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}

	unavailable := WithMessage(ErrItemUnavailable, "item %d is %s", 3, "RESERVED")
	if !errors.Is(unavailable, ErrItemUnavailable) || CodeOf(unavailable) != "item_unavailable" {
		t.Errorf("expected item_unavailable match, got %v", unavailable)
	}
}

func TestMessageOfHidesInternalErrors(t *testing.T) {
	if got := MessageOf(errors.New("sql: connection refused")); got != "internal server error" {
		t.Errorf("expected generic message, got %q", got)
	}
}
