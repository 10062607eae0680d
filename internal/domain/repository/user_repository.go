package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-profile-service/internal/domain/entity"
)

// ErrNotFound is returned when the requested profile does not exist
// in the primary store.
var ErrNotFound = errors.New("user not found")

// UserRepository defines the primary-store operations for user profiles.
// Search excludes the email column from its projection; RemoveFriendship
// performs both symmetric edge removals inside a single transaction.
type UserRepository interface {
	Create(ctx context.Context, u *entity.UserProfile) error
	GetByID(ctx context.Context, id string) (*entity.UserProfile, error)
	Search(ctx context.Context, query string, limit int) ([]entity.UserSummary, error)
	Update(ctx context.Context, u *entity.UserProfile) error
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
	RemoveFriendship(ctx context.Context, userID, friendID string) error
}
