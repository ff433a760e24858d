package models

import (
	"strconv"
	"strings"
)

// FeedCursor is the position of a post in the reverse-chronological feed.
// Posts sharing a timestamp are ordered by descending ID.
type FeedCursor struct {
	CreatedAt int64
	// ID is zero when the cursor only carries a timestamp.
	ID uint
}

// String encodes the cursor as "<created_at>:<id>".
func (c FeedCursor) String() string {
	return strconv.FormatInt(c.CreatedAt, 10) + ":" + strconv.FormatUint(uint64(c.ID), 10)
}

// ParseFeedCursor decodes "<created_at>:<id>" or a bare "<created_at>".
// An empty string yields a nil cursor (first page).
func ParseFeedCursor(raw string) (*FeedCursor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	tsPart, idPart, hasID := strings.Cut(raw, ":")
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil || ts < 0 {
		return nil, NewValidationError("Invalid cursor")
	}
	cursor := &FeedCursor{CreatedAt: ts}
	if hasID {
		id, err := strconv.ParseUint(idPart, 10, 32)
		if err != nil || id == 0 {
			return nil, NewValidationError("Invalid cursor")
		}
		cursor.ID = uint(id)
	}
	return cursor, nil
}
