package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hongminglow/finance-tracker/internal/http/respond"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/service"
)

const maxBodyBytes = 1 << 20

// Guard wraps handlers that require an authenticated session.
type Guard func(http.Handler) http.Handler

// errorWriter converts service errors into HTTP responses and tags log
// lines with the owning handler's component.
type errorWriter struct {
	exposeErrors bool
	component    string
}

func (e errorWriter) logger(r *http.Request) *applog.Logger {
	return applog.FromContext(r.Context()).WithComponent(e.component)
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (e errorWriter) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	message := "internal server error"
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	if status >= http.StatusInternalServerError {
		e.logger(r).Error("request failed", applog.FieldError, err)
		if e.exposeErrors {
			respond.ErrorDetail(w, status, message, err.Error())
			return
		}
	}
	respond.Error(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
