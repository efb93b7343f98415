package pagination

// CursorResult is one page of a cursor-paginated listing.
type CursorResult[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// NewCursorResult expects up to size+1 items. The extra item only signals
// that another page exists; it is dropped and the cursor is taken from the
// last item kept.
func NewCursorResult[T any](items []T, size int, cursorFn func(T) (string, error)) (*CursorResult[T], error) {
	res := &CursorResult[T]{Items: items}
	if len(items) <= size {
		return res, nil
	}

	res.Items = items[:size]
	res.HasMore = true
	if size == 0 {
		return res, nil
	}

	cursor, err := cursorFn(res.Items[size-1])
	if err != nil {
		return nil, err
	}
	res.NextCursor = &cursor

	return res, nil
}
