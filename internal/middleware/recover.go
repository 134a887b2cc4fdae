package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Varun5711/expense-tracker/internal/logger"
	"github.com/Varun5711/expense-tracker/internal/respond"
)

type panicError struct {
	value interface{}
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic: %v\n%s", rec, debug.Stack())
					respond.Error(w, r, log, panicError{value: rec})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
