package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/user-profile-service/internal/domain/entity"
	"github.com/oksasatya/user-profile-service/internal/domain/repository"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it too, which is what the repository tests rely on.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.UserProfile) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, bio, avatar_url, friends)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Email, u.Password, u.Bio, u.AvatarURL, u.Friends)

	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	u := &entity.UserProfile{}

	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, bio, avatar_url, friends, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Bio, &u.AvatarURL,
		&u.Friends, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

// Search runs a full-text relevance query over username and bio.
// The email column is deliberately absent from the projection.
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]entity.UserSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, bio, avatar_url,
		       ts_rank(search_vector, plainto_tsquery('simple', $1)) AS score
		FROM users
		WHERE search_vector @@ plainto_tsquery('simple', $1)
		ORDER BY score DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	results := make([]entity.UserSummary, 0, limit)
	for rows.Next() {
		var s entity.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.Bio, &s.AvatarURL, &s.Score); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *entity.UserProfile) error {
	u.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET username = $1, bio = $2, avatar_url = $3, updated_at = $4
		WHERE id = $5
	`, u.Username, u.Bio, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET avatar_url = $1, updated_at = now()
		WHERE id = $2
	`, avatarURL, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveFriendship removes both directions of the edge inside one
// transaction: either both friend sets shrink or neither does. The
// transaction is scoped to this call; the deferred rollback releases
// it on every exit path and is a no-op after commit.
func (r *UserRepository) RemoveFriendship(ctx context.Context, userID, friendID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin friendship tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE users SET friends = array_remove(friends, $2), updated_at = now()
		WHERE id = $1
	`, userID, friendID); err != nil {
		return fmt.Errorf("remove friend from %s: %w", userID, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET friends = array_remove(friends, $2), updated_at = now()
		WHERE id = $1
	`, friendID, userID); err != nil {
		return fmt.Errorf("remove friend from %s: %w", friendID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit friendship tx: %w", err)
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
