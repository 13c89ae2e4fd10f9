package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Person struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Username       string      `json:"username" db:"username"`
	CPR            string      `json:"cpr" db:"cpr"`
	ProfilePicture string      `json:"profile_picture" db:"profile_picture"`
	StarSign       string      `json:"star_sign" db:"star_sign"`
	FriendIDs      []uuid.UUID `json:"friend_ids" db:"friend_ids"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// PersonFields are the user-editable columns written by create and update.
type PersonFields struct {
	Username       string
	CPR            string
	ProfilePicture string
	StarSign       string
}

// HasFriend reports whether id is in the friend list.
func (p *Person) HasFriend(id uuid.UUID) bool {
	return slices.Contains(p.FriendIDs, id)
}

// Clone returns a deep copy so callers never share the friend slice.
func (p *Person) Clone() *Person {
	c := *p
	c.FriendIDs = slices.Clone(p.FriendIDs)
	if c.FriendIDs == nil {
		c.FriendIDs = []uuid.UUID{}
	}
	return &c
}
