package types

// UserID identifies an authenticated user (owner of chat histories)
type UserID string

func (x UserID) String() string {
	return string(x)
}
