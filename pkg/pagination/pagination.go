package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	// DefaultLimit caps list responses when the caller gives no limit.
	DefaultLimit = 1000
	MaxLimit     = 5000
)

// Params holds the limit/offset window of a list request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads "limit" and "offset" query parameters, clamping invalid
// or oversized values.
func FromContext(c echo.Context) Params {
	return Parse(c.QueryParam("limit"), c.QueryParam("offset"))
}

// Parse builds Params from raw query values.
func Parse(limitRaw, offsetRaw string) Params {
	limit, err := strconv.Atoi(limitRaw)
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset, err := strconv.Atoi(offsetRaw)
	if err != nil || offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// Window applies the params to an in-memory slice length, returning the
// [start, end) bounds to slice with.
func (p Params) Window(n int) (start, end int) {
	if p.Offset >= n {
		return n, n
	}
	end = p.Offset + p.Limit
	if end > n {
		end = n
	}
	return p.Offset, end
}
