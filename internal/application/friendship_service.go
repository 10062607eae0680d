package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-profile-service/internal/domain/entity"
	repo "github.com/oksasatya/user-profile-service/internal/domain/repository"
)

const sideEffectTimeout = 5 * time.Second

// FriendshipService owns the two-sided friendship removal workflow.
//
// Stages are strictly sequential: validate, transactional dual edge
// removal, permission invalidation for each party, one broker event.
// Only the edge removal is atomic; if an invalidation fails after the
// transaction committed, the caller gets an error even though the
// relationship change is already durable. Callers must treat a failed
// removal as possibly applied and re-check state before retrying.
type FriendshipService struct {
	Repo        repo.UserRepository
	Permissions PermissionInvalidator
	Events      EventPublisher
	Logger      *logrus.Logger
}

func NewFriendshipService(r repo.UserRepository, perms PermissionInvalidator, events EventPublisher, logger *logrus.Logger) *FriendshipService {
	return &FriendshipService{Repo: r, Permissions: perms, Events: events, Logger: logger}
}

// RemoveFriend removes the symmetric edge between userID and friendID.
func (s *FriendshipService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return ErrSelfRemoval
	}

	if err := s.Repo.RemoveFriendship(ctx, userID, friendID); err != nil {
		return fmt.Errorf("friendship removal: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "friend_id": friendID}).Info("friendship removal committed")

	// Post-commit side effects. Not compensated: the transaction above
	// already committed, so an error from here on reports failure for
	// an operation that durably happened.
	if err := s.invalidate(ctx, userID); err != nil {
		return err
	}
	if err := s.invalidate(ctx, friendID); err != nil {
		return err
	}

	pctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	event := entity.RelationshipRemovedEvent{User1: userID, User2: friendID}
	if err := s.Events.PublishEvent(pctx, entity.EventChatDeleted, event); err != nil {
		// Fire-and-forget: the removal still succeeds.
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "friend_id": friendID}).Warn("publish relationship removed event failed")
	}

	return nil
}

func (s *FriendshipService) invalidate(ctx context.Context, userID string) error {
	ictx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.Permissions.Invalidate(ictx, userID); err != nil {
		return fmt.Errorf("permission invalidation after commit: %w", err)
	}
	return nil
}
