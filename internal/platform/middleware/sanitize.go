package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const maxHeaderValueSize = 8 << 10

// Sanitize rejects requests carrying path traversal, null bytes or header
// line breaks with 400. Oversized header values are rejected too.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			reject := func(reason string) error {
				logger.Warn().
					Str("path", req.URL.Path).
					Str("remote_ip", c.RealIP()).
					Str("reason", reason).
					Msg("request rejected")
				return echo.NewHTTPError(http.StatusBadRequest, reason)
			}

			raw := req.URL.RawPath
			if raw == "" {
				raw = req.URL.Path
			}
			if hasTraversal(req.URL.Path) || hasTraversal(raw) {
				return reject("path traversal detected")
			}
			if hasNullByte(req.URL.Path) || hasNullByte(raw) {
				return reject("null byte in path")
			}

			for name, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValueSize {
						return reject("header too large: " + name)
					}
					if strings.ContainsAny(v, "\r\n") {
						return reject("line break in header: " + name)
					}
				}
			}

			for key, values := range req.URL.Query() {
				if hasNullByte(key) {
					return reject("null byte in query parameter")
				}
				for _, v := range values {
					if hasNullByte(v) {
						return reject("null byte in query parameter")
					}
				}
			}
			return next(c)
		}
	}
}

func hasTraversal(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "..") || strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

func hasNullByte(s string) bool {
	return strings.ContainsRune(s, 0) || strings.Contains(s, "%00")
}
