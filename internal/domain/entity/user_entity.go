package entity

import (
	"time"
)

// UserProfile is the aggregate root for the profile domain.
// Email is immutable after registration and must never appear in
// search projections. Friends is mutated only by the friendship
// workflow so the symmetric-edge invariant stays with one owner.
type UserProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	Friends   []string  `json:"friends"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the redacted projection returned by search.
// It carries the text relevance score so ordering survives caching.
type UserSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Bio       string  `json:"bio"`
	AvatarURL string  `json:"avatar_url"`
	Score     float64 `json:"score"`
}

// HasFriend reports whether id is in the profile's friend set.
func (u *UserProfile) HasFriend(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
