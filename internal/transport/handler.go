package transport

import (
	"errors"
	"net/http"
	"strconv"

	"food-catalog/internal/middleware"
	"food-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("id must be a positive integer")

// statusFor maps a service error kind to its HTTP status. A category that
// cannot be deleted is reported as 400 like any other rejected request.
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindDuplicate, service.KindConflict:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err as a failed envelope. Only server errors
// expose the underlying error text.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		svcErr = &service.Error{Kind: service.KindInternal, Message: "Internal server error", Err: err}
	}

	status := statusFor(svcErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error(svcErr.Message, zap.String("kind", string(svcErr.Kind)), zap.Error(svcErr.Err))

		errMsg := ""
		if svcErr.Err != nil {
			errMsg = svcErr.Err.Error()
		}
		middleware.RespondError(w, status, svcErr.Message, errMsg)
		return
	}

	logger.Debug("Request rejected", zap.String("kind", string(svcErr.Kind)), zap.String("message", svcErr.Message))

	if details := middleware.FormatValidationErrors(svcErr.Err); len(details) > 0 {
		middleware.RespondWithValidationErrors(w, svcErr.Message, details)
		return
	}
	if svcErr.Kind == service.KindConflict {
		count := svcErr.Count
		middleware.RespondWithJSON(w, status, middleware.Envelope{Message: svcErr.Message, Count: &count})
		return
	}
	middleware.RespondError(w, status, svcErr.Message, "")
}

// pathID reads the {id} route parameter
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
