// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/policy/studypolicy"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"go.uber.org/zap"
)

// Error codes used in the JSON envelope.
const (
	CodeBadRequest       = "bad_request"
	CodeValidation       = "validation_failed"
	CodeUnauthenticated  = "unauthenticated"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeInvalidState     = "invalid_state_transition"
	CodeRateLimited      = "rate_limited"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

// Handler serves the router-level fallbacks.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, http.StatusNotFound, CodeNotFound, "no such route")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

// InputError reports a request that names something the server cannot
// use, such as an unknown tag. It maps to 400.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string { return e.Msg }
func (e *InputError) Unwrap() error { return e.Err }

// BadInput wraps err as an InputError with msg.
func BadInput(msg string, err error) error {
	return &InputError{Msg: msg, Err: err}
}

// Status maps err to an HTTP status and envelope code.
func Status(err error) (int, string) {
	if stderrors.Is(err, studypolicy.ErrForbidden) {
		return http.StatusForbidden, CodeForbidden
	}
	var in *InputError
	if stderrors.As(err, &in) {
		return http.StatusBadRequest, CodeBadRequest
	}
	switch domainerr.KindOf(err) {
	case domainerr.InvalidStateTransition:
		return http.StatusConflict, CodeInvalidState
	case domainerr.RateLimited:
		return http.StatusTooManyRequests, CodeRateLimited
	case domainerr.NotFound:
		return http.StatusNotFound, CodeNotFound
	case domainerr.Conflict:
		return http.StatusConflict, CodeConflict
	case domainerr.Invalid:
		return http.StatusBadRequest, CodeValidation
	}
	return http.StatusInternalServerError, CodeInternal
}

// Write sends the error envelope for err. Unclassified errors are logged
// and reported as a generic 500 so internals never reach the client.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, code := Status(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = "something went wrong"
	case http.StatusForbidden:
		msg = "you are not allowed to do that"
	}
	respond.Error(w, r, status, code, msg)
}

// BadRequest reports a malformed body or parameter.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	respond.Error(w, r, http.StatusBadRequest, CodeBadRequest, msg)
}

// Validation reports the first failed rule of res.
func Validation(w http.ResponseWriter, r *http.Request, res *inputval.Result) {
	respond.Error(w, r, http.StatusBadRequest, CodeValidation, res.First())
}

// Unauthenticated reports a missing sign-in.
func Unauthenticated(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, http.StatusUnauthorized, CodeUnauthenticated, "sign in required")
}
