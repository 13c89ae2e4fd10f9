package dto

import "github.com/google/uuid"

// WSEvent is a WebSocket message for real-time person change delivery.
type WSEvent struct {
	Type      string     `json:"type"` // created, updated, deleted, friend_added, friend_removed
	PersonID  uuid.UUID  `json:"personId"`
	FriendID  *uuid.UUID `json:"friendId,omitempty"`
	Timestamp string     `json:"timestamp"`
}
