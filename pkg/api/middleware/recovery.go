package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// PanicRecovery creates middleware that recovers from panics in HTTP handlers.
// Internal details are logged but not exposed to clients.
func PanicRecovery(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic in HTTP handler",
					logging.Error(fmt.Errorf("%v", rec)),
					logging.String("method", r.Method),
					logging.Path(r.URL.Path),
					logging.RequestID(GetRequestID(r)),
					logging.String("stack", string(debug.Stack())),
				)
				WriteError(w, r, http.StatusInternalServerError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
