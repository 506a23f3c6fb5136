package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
	}{
		{CodeValidation, http.StatusBadRequest, false},
		{CodeNotFound, http.StatusNotFound, false},
		{CodeConflict, http.StatusConflict, false},
		{CodeStateConflict, http.StatusUnprocessableEntity, false},
		{CodeDependency, http.StatusServiceUnavailable, true},
		{CodeInternal, http.StatusInternalServerError, true},
	}
	for _, tc := range tests {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Errorf("%s: expected status %d got %d", tc.code, tc.status, meta.HTTPStatus)
		}
		if meta.Retryable != tc.retryable {
			t.Errorf("%s: expected retryable %v", tc.code, tc.retryable)
		}
	}
}

func TestMetadataForUnknownFallsBackToInternal(t *testing.T) {
	if got := MetadataFor(Code("nope")); got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback status %d", got.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	sentinel := stdErrors.New("schedule conflict")
	err := fmt.Errorf("propose: %w", Wrap(CodeConflict, sentinel, "entry overlaps").WithDetails(map[string]string{"truck_id": "t1"}))

	if !stdErrors.Is(err, sentinel) {
		t.Fatalf("expected sentinel in chain")
	}
	if CodeOf(err) != CodeConflict {
		t.Fatalf("expected conflict code, got %s", CodeOf(err))
	}
	te := As(err)
	if te == nil || te.Details() == nil {
		t.Fatalf("expected typed error with details")
	}
	if !IsCode(err, CodeConflict) || IsCode(nil, CodeConflict) {
		t.Fatalf("IsCode mismatch")
	}
}

func TestPlainErrorReportsInternal(t *testing.T) {
	if CodeOf(stdErrors.New("boom")) != CodeInternal {
		t.Fatalf("plain errors should map to internal")
	}
}
