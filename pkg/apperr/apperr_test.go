package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
	}{
		{name: "Upstream with remote status", err: Upstream(503, "source down", nil), wantKind: KindUpstream, wantStatus: 503},
		{name: "Upstream transport failure", err: Upstream(0, "dial failed", errors.New("refused")), wantKind: KindUpstream, wantStatus: 500},
		{name: "NotFound", err: NotFound("missing"), wantKind: KindNotFound, wantStatus: 404},
		{name: "Validation", err: Validation("bad input"), wantKind: KindValidation, wantStatus: 400},
		{name: "Persistence", err: Persistence("write failed", errors.New("disk")), wantKind: KindPersistence, wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsKind(tt.err, tt.wantKind) {
				t.Errorf("IsKind = false for %v", tt.err)
			}
			if got := StatusOf(tt.err); got != tt.wantStatus {
				t.Errorf("StatusOf = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestStatusOfPlainError(t *testing.T) {
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf = %d, want 500", got)
	}
	if got := MessageOf(errors.New("boom")); got != "internal server error" {
		t.Errorf("MessageOf = %q", got)
	}
}

func TestWrappedErrorResolves(t *testing.T) {
	inner := NotFound("missing chapter")
	wrapped := fmt.Errorf("during refresh: %w", inner)

	if !IsKind(wrapped, KindNotFound) {
		t.Error("IsKind should see through wrapping")
	}
	if got := StatusOf(wrapped); got != 404 {
		t.Errorf("StatusOf = %d, want 404", got)
	}
	if got := MessageOf(wrapped); got != "missing chapter" {
		t.Errorf("MessageOf = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("write failed", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}
