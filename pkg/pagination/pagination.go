package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows a single page can return.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points just past the last item of the previous page. ID guards against the
// upstream list shifting between requests.
type Cursor struct {
	Offset int
	ID     string
}

// Page is one window over an in-memory list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%d|%s", cursor.Offset, cursor.ID)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	offset, err := strconv.Atoi(parts[0])
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("invalid cursor offset %q", parts[0])
	}
	return &Cursor{Offset: offset, ID: parts[1]}, nil
}

// Window slices items according to params. When the item before the cursor no longer has
// the cursor's ID the list changed underneath the client, and paging restarts from the top.
func Window[T any](items []T, params Params, idOf func(T) string) (Page[T], error) {
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, err
	}

	start := 0
	if cursor != nil {
		start = cursor.Offset
		if start > len(items) || start == 0 || idOf(items[start-1]) != cursor.ID {
			start = 0
		}
	}

	end := start + NormalizeLimit(params.Limit)
	if end > len(items) {
		end = len(items)
	}

	page := Page[T]{Items: items[start:end]}
	if end < len(items) {
		page.NextCursor = EncodeCursor(Cursor{Offset: end, ID: idOf(items[end-1])})
	}
	return page, nil
}
