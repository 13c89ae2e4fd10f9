package models

import (
	"time"

	"github.com/google/uuid"
)

type PersonEventType string

const (
	PersonCreated PersonEventType = "created"
	PersonUpdated PersonEventType = "updated"
	PersonDeleted PersonEventType = "deleted"
	FriendAdded   PersonEventType = "friend_added"
	FriendRemoved PersonEventType = "friend_removed"
)

// PersonEvent is published after a mutation commits. FriendID is set for the
// friend edge events only.
type PersonEvent struct {
	Type      PersonEventType `json:"type"`
	PersonID  uuid.UUID       `json:"person_id"`
	FriendID  *uuid.UUID      `json:"friend_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewPersonEvent(t PersonEventType, personID uuid.UUID) PersonEvent {
	return PersonEvent{Type: t, PersonID: personID, Timestamp: time.Now().UTC()}
}

func NewFriendEvent(t PersonEventType, personID, friendID uuid.UUID) PersonEvent {
	e := NewPersonEvent(t, personID)
	e.FriendID = &friendID
	return e
}
