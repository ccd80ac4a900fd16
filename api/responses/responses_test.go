package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/types"
)

func writeAndDecode(t *testing.T, err error) (int, types.ErrorEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, err)
	var envelope types.ErrorEnvelope
	if decodeErr := json.NewDecoder(rec.Body).Decode(&envelope); decodeErr != nil {
		t.Fatalf("decode error envelope: %v", decodeErr)
	}
	return rec.Code, envelope
}

func TestWriteErrorSurfacesDependencyMessage(t *testing.T) {
	status, envelope := writeAndDecode(t, pkgerrors.New(pkgerrors.CodeDependency, "identity provider rejected the invitation: quota exceeded"))
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
	if envelope.Error.Message != "identity provider rejected the invitation: quota exceeded" {
		t.Fatalf("expected dependency message passed through, got %q", envelope.Error.Message)
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	status, envelope := writeAndDecode(t, pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: connection refused"), "failed to save signup"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("expected generic message for internal errors, got %q", envelope.Error.Message)
	}
}

func TestWriteErrorWrapsUnknownErrors(t *testing.T) {
	status, envelope := writeAndDecode(t, errors.New("boom"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("expected internal code, got %q", envelope.Error.Code)
	}
}
