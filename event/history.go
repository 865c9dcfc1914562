package event

import "time"

// SessionRecord describes one prior session as returned by enumeration.
type SessionRecord struct {
	SessionID      string
	CreatedAt      time.Time
	LastUpdatedAt  time.Time
	ProjectDir     string
	Branch         string
	MessageCount   int
}
