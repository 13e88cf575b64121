package models

import "time"

// SessionResult is the immutable record of one finished review session.
// Cards holds snapshots taken at session end with Flipped forced false.
// Invariant: Score <= Size == len(Cards).
type SessionResult struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int       `json:"size"`
	Score     int       `json:"score"`
	Cards     []Card    `json:"cards"`
}
