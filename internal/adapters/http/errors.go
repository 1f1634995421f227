package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studydash/core/internal/infrastructure/logger"
)

// NewErrorHandler converts every error into the uniform JSON error envelope,
// CORS headers already applied by the middleware chain. Installed on the echo
// instance so handler and middleware failures serialize the same way.
func NewErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = fmt.Sprintf("%v", he.Message)
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			var werr error
			if c.Request().Method == http.MethodHead {
				werr = c.NoContent(code)
			} else {
				werr = c.JSON(code, ErrorResponse{Error: msg})
			}
			if werr != nil {
				logger.Errorw("Error sending response", "error", werr)
			}
		}
	}
}
