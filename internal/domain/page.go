package domain

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// GamePage is one page of a paginated listing. ContinueCursor is opaque to
// callers; a nil cursor with IsDone set marks a terminal page that cannot be
// resumed (used by the full-text fallback paths).
type GamePage struct {
	Games          []Game  `json:"page"`
	ContinueCursor *string `json:"continue_cursor,omitempty"`
	IsDone         bool    `json:"is_done"`
}

// TerminalPage wraps results that carry no continuation cursor.
func TerminalPage(games []Game) GamePage {
	return GamePage{Games: games, IsDone: true}
}

// EncodeRowCursor encodes a join-table keyset position.
func EncodeRowCursor(lastID int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte("r:" + strconv.FormatInt(lastID, 10)))
}

// DecodeRowCursor decodes a cursor produced by EncodeRowCursor. An empty
// cursor decodes to position zero.
func DecodeRowCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	s := string(raw)
	if len(s) < 2 || s[:2] != "r:" {
		return 0, fmt.Errorf("malformed cursor")
	}
	id, err := strconv.ParseInt(s[2:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor: %w", err)
	}
	return id, nil
}

// EncodeGameCursor encodes an entity-table keyset position.
func EncodeGameCursor(lastID uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte("g:" + lastID.String()))
}

// DecodeGameCursor decodes a cursor produced by EncodeGameCursor. An empty
// cursor decodes to the zero UUID, which sorts before every real identity.
func DecodeGameCursor(cursor string) (uuid.UUID, error) {
	if cursor == "" {
		return uuid.Nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode cursor: %w", err)
	}
	s := string(raw)
	if len(s) < 2 || s[:2] != "g:" {
		return uuid.Nil, fmt.Errorf("malformed cursor")
	}
	id, err := uuid.Parse(s[2:])
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed cursor: %w", err)
	}
	return id, nil
}
