package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// Envelope is the body of every API response
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details []ValidationError `json:"details,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondSuccess sends a successful envelope. The message may be empty.
func RespondSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	RespondWithJSON(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

// RespondList sends a successful envelope carrying a collection and its size
func RespondList(w http.ResponseWriter, message string, data any, count int) {
	RespondWithJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Count: &count})
}

// RespondError sends a failed envelope. errMsg is the underlying error text
// and is omitted when empty.
func RespondError(w http.ResponseWriter, statusCode int, message, errMsg string) {
	RespondWithJSON(w, statusCode, Envelope{Message: message, Error: errMsg})
}

// RespondWithValidationErrors sends a 400 envelope listing the failed fields
func RespondWithValidationErrors(w http.ResponseWriter, message string, errors []ValidationError) {
	RespondWithJSON(w, http.StatusBadRequest, Envelope{Message: message, Details: errors})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 envelopes.
// The stack trace is only included when exposeStack is set.
func ErrorHandlingMiddleware(logger *zap.Logger, exposeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					stack := debug.Stack()
					logger.Error("Panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.ByteString("stack", stack),
					)

					body := Envelope{Message: "Something went wrong!", Error: fmt.Sprint(rec)}
					if exposeStack {
						body.Stack = string(stack)
					}
					RespondWithJSON(w, http.StatusInternalServerError, body)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
