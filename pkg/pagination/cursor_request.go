package pagination

import (
	"fmt"
	"strconv"
)

// CursorRequest represents a cursor-based pagination request
type CursorRequest struct {
	Cursor *string `json:"cursor,omitempty" query:"cursor"`
	Size   int     `json:"size" query:"size" validate:"min=1,max=1000"`
}

// ParseCursorRequest builds a validated request from raw query values.
// Empty values fall back to defaults.
func ParseCursorRequest(cursor, size string) (CursorRequest, error) {
	var r CursorRequest
	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return r, fmt.Errorf("size must be a number: %w", err)
		}
		r.Size = n
	}
	if cursor != "" {
		r.Cursor = &cursor
	}
	return r, r.Validate()
}

// Validate normalizes the page size into [1, PageMaxSize]. A size below one
// means the default.
func (r *CursorRequest) Validate() error {
	if r.Size <= 0 {
		r.Size = PageDefaultSize
	}
	if r.Size > PageMaxSize {
		r.Size = PageMaxSize
	}
	return nil
}
