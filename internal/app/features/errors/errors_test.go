package errors_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	errorsfeature "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/policy/studypolicy"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid transition", domainerr.InvalidTransition("publish", "already published"), http.StatusConflict, errorsfeature.CodeInvalidState},
		{"rate limited", domainerr.RateLimit("start recruit", "too soon"), http.StatusTooManyRequests, errorsfeature.CodeRateLimited},
		{"not found", domainerr.NotFoundf("study", "go"), http.StatusNotFound, errorsfeature.CodeNotFound},
		{"conflict", domainerr.Conflictf("save study", "stale"), http.StatusConflict, errorsfeature.CodeConflict},
		{"wrapped not found", fmt.Errorf("load: %w", domainerr.NotFoundf("tag", "x")), http.StatusNotFound, errorsfeature.CodeNotFound},
		{"invalid", domainerr.Invalidf("find or create tag", "title is empty"), http.StatusBadRequest, errorsfeature.CodeValidation},
		{"forbidden", studypolicy.ErrForbidden, http.StatusForbidden, errorsfeature.CodeForbidden},
		{"bad input over not found", errorsfeature.BadInput("unknown tag", domainerr.NotFoundf("tag", "x")), http.StatusBadRequest, errorsfeature.CodeBadRequest},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, errorsfeature.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := errorsfeature.Status(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status: got %d, want %d", status, tt.wantStatus)
			}
			if code != tt.wantCode {
				t.Errorf("code: got %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestWrite_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)

	errorsfeature.Write(rec, req, zap.NewNop(), fmt.Errorf("mongo: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	var body respond.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "error" {
		t.Errorf("status field: got %q, want error", body.Status)
	}
	if body.Error.Message != "something went wrong" {
		t.Errorf("message: got %q", body.Error.Message)
	}
}

func TestWrite_RateLimitedKeepsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/x", nil)

	errorsfeature.Write(rec, req, zap.NewNop(), domainerr.RateLimit("start recruit", "try again later"))

	var body respond.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "start recruit: try again later" {
		t.Errorf("message: got %q", body.Error.Message)
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	h := errorsfeature.NewHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound: got %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest("DELETE", "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed: got %d, want 405", rec.Code)
	}
}
