package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidCursor wraps every structural cursor failure.
var ErrInvalidCursor = errors.New("cursor: invalid")

// Cursor is the opaque pagination token (pre-encoding) with short field names
// to keep payloads small. It is serialized to minified JSON and encoded with
// URL-safe base64.
//
// Fields:
//   - v:   version of the cursor schema
//   - sid: session ID
//   - off: offset into the chart collection
//   - ps:  page size
//   - gen: dataset generation (load time, unix nanos) the cursor was issued for
//   - iat: issued-at timestamp (unix seconds)
type Cursor struct {
	V   int    `json:"v"`
	Sid string `json:"sid"`
	Off int    `json:"off"`
	Ps  int    `json:"ps"`
	Gen int64  `json:"gen"`
	Iat int64  `json:"iat"`
}

// EncodeCursor serializes and encodes the cursor as URL-safe base64 (without padding).
func EncodeCursor(c Cursor) (string, error) {
	if err := validate(&c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor decodes a URL-safe base64 token and parses the JSON cursor.
func DecodeCursor(token string) (*Cursor, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidCursor)
	}
	data, err := base64.RawURLEncoding.DecodeString(t)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrInvalidCursor, err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Matches reports whether the cursor was issued for this session and dataset.
func (c *Cursor) Matches(sessionID string, gen int64) bool {
	return c.Sid == sessionID && c.Gen == gen
}

// validate performs structural checks and defaulting.
func validate(c *Cursor) error {
	if c.V <= 0 {
		c.V = 1
	}
	if c.Iat == 0 {
		c.Iat = time.Now().Unix()
	}
	if strings.TrimSpace(c.Sid) == "" {
		return fmt.Errorf("%w: sid (session id) required", ErrInvalidCursor)
	}
	if c.Off < 0 {
		return fmt.Errorf("%w: off must be >= 0", ErrInvalidCursor)
	}
	if c.Ps <= 0 {
		return fmt.Errorf("%w: ps must be > 0", ErrInvalidCursor)
	}
	return nil
}

// NextOffset computes the next offset after returning n items.
func NextOffset(curr, n int) int {
	if curr < 0 {
		curr = 0
	}
	if n <= 0 {
		return curr
	}
	return curr + n
}
