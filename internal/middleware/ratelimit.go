package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit throttles a route group to the given formatted rate, e.g. "10-M"
// for ten requests per minute per client IP. Used on the auth endpoints to
// slow down credential guessing.
func RateLimit(formatted string) echo.MiddlewareFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		panic("invalid rate limit format: " + formatted)
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)
	limiterMiddleware := stdlib.NewMiddleware(instance)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var handlerErr error
			limiterMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerErr = next(c)
			})).ServeHTTP(c.Response(), c.Request())

			if c.Response().Status == http.StatusTooManyRequests {
				return nil
			}
			return handlerErr
		}
	}
}
