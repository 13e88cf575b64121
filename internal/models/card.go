package models

import "time"

// Card is a single front/back vocabulary card. Remote cards carry UUID ids
// assigned by the store; anonymous-mode cards carry locally generated numeric
// ids. Flipped is a display toggle only and never affects scoring.
type Card struct {
	ID        string    `json:"id" db:"id"`
	Front     string    `json:"front" db:"front"`
	Back      string    `json:"back" db:"back"`
	Flipped   bool      `json:"flipped" db:"flipped"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
