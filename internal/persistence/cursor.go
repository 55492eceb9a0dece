// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/fitsummary/internal/domain"
)

// ErrInvalidCursor is returned for tokens EncodeCursor could not have produced.
var ErrInvalidCursor = errors.New("invalid cursor")

// cursorToken is the opaque page token: the keyset position of the last row
// returned, as unpadded URL-safe base64 JSON.
type cursorToken struct {
	RecordedAt time.Time `json:"r"`
	WorkoutID  uuid.UUID `json:"w"`
}

// EncodeCursor turns a keyset position into a page token. A nil cursor, meaning
// no further pages, encodes to "".
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return ""
	}
	raw, err := json.Marshal(cursorToken{RecordedAt: c.RecordedAt.UTC(), WorkoutID: id})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor. A blank token is the first page.
func DecodeCursor(token string) (*domain.Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var ct cursorToken
	if err := json.Unmarshal(raw, &ct); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if ct.RecordedAt.IsZero() || ct.WorkoutID == uuid.Nil {
		return nil, fmt.Errorf("%w: incomplete position", ErrInvalidCursor)
	}
	return &domain.Cursor{RecordedAt: ct.RecordedAt, ID: ct.WorkoutID.String()}, nil
}
