// Package notification schedules deferred mail jobs and delivers them.
package notification

import (
	"context"
	"time"

	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
)

// Message is a rendered mail ready for a transport.
type Message struct {
	JobID    string
	MailType vo.MailType
	To       string
	ToName   string
	Subject  string
	HTML     string
	Text     string
}

// MailTransport hands a rendered message to the mail backend.
type MailTransport interface {
	Send(ctx context.Context, msg Message) error
}

type Recipient struct {
	UserID uint
	Email  string
	Name   string
}

// RecipientDirectory resolves user ids to mail addresses.
type RecipientDirectory interface {
	Lookup(ctx context.Context, userID uint) (Recipient, error)
}

// GroupGate remembers group keys for a window. TryAcquire returns false when
// the group was already seen within it. Release forgets a group early.
type GroupGate interface {
	TryAcquire(ctx context.Context, group string, window time.Duration) (bool, error)
	Release(ctx context.Context, group string) error
}
