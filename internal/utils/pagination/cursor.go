package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the opaque pagination state we encode/decode.
// ID + Unix (in nanoseconds) of the last row establish a stable keyset cursor.
// The timestamp keeps whatever precision the driver stored.
type Cursor struct {
	ID   string `json:"id"`
	Unix int64  `json:"ns,omitempty"`
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool {
	return c.ID == "" && c.Unix == 0
}

// Time returns the cursor timestamp.
func (c Cursor) Time() time.Time {
	return time.Unix(0, c.Unix).UTC()
}

// After builds the cursor that resumes after a row.
func After(id string, ts time.Time) Cursor {
	return Cursor{ID: id, Unix: ts.UnixNano()}
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}
