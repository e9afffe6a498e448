package types

import "github.com/google/uuid"

// ChatID identifies one question/answer exchange
type ChatID string

func NewChatID() ChatID {
	return ChatID(uuid.New().String())
}

func (x ChatID) String() string {
	return string(x)
}

// ChatStatus is the lifecycle status of a chat exchange
type ChatStatus string

const (
	ChatStatusPending   ChatStatus = "pending"
	ChatStatusStreaming ChatStatus = "streaming"
	ChatStatusCompleted ChatStatus = "completed"
	ChatStatusFailed    ChatStatus = "failed"
	ChatStatusAborted   ChatStatus = "aborted"
)

func (x ChatStatus) String() string {
	return string(x)
}

// IsTerminal returns true if no further mutation is allowed after reaching the status
func (x ChatStatus) IsTerminal() bool {
	switch x {
	case ChatStatusCompleted, ChatStatusFailed, ChatStatusAborted:
		return true
	}
	return false
}

// Valid returns true if the status is one of the known statuses
func (x ChatStatus) Valid() bool {
	switch x {
	case ChatStatusPending, ChatStatusStreaming, ChatStatusCompleted, ChatStatusFailed, ChatStatusAborted:
		return true
	}
	return false
}

// CanTransitTo reports whether a record in status x may move to next.
// Non-terminal statuses may be re-applied so that snapshots can be written
// repeatedly. Terminal statuses only accept themselves.
func (x ChatStatus) CanTransitTo(next ChatStatus) bool {
	if !next.Valid() {
		return false
	}

	switch x {
	case ChatStatusPending:
		return true
	case ChatStatusStreaming:
		return next != ChatStatusPending
	default:
		return x == next
	}
}
