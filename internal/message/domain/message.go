package domain

import (
	"time"

	userdomain "github.com/messagely/backend/internal/user/domain"
)

type Message struct {
	ID           string
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time
}

// Detail is a message joined with both counterpart profiles, the shape
// returned for a single-message lookup.
type Detail struct {
	ID       string
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
	FromUser userdomain.Summary
	ToUser   userdomain.Summary
}

// Sent is a message sent by a user, enriched with the recipient's profile.
type Sent struct {
	ID     string
	Body   string
	SentAt time.Time
	ReadAt *time.Time
	ToUser userdomain.Summary
}

// Received is a message received by a user, enriched with the sender's profile.
type Received struct {
	ID       string
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
	FromUser userdomain.Summary
}
