package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-profile-service/internal/domain/entity"
	repo "github.com/oksasatya/user-profile-service/internal/domain/repository"
)

const (
	searchCacheTTL  = 300 * time.Second
	searchLimit     = 10
	populateTimeout = 2 * time.Second
	indexTimeout    = 3 * time.Second
)

func searchKey(query string) string { return "search:" + query }
func userKey(id string) string      { return "user:" + id }

// ProfileService serves the cache-aside read path for profile and
// search lookups, plus profile updates. Redis entries are derived
// artifacts; the primary store stays authoritative.
type ProfileService struct {
	Repo         repo.UserRepository
	Cache        Cache
	Jobs         JobQueue
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewProfileService(r repo.UserRepository, cache Cache, jobs JobQueue, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *ProfileService {
	return &ProfileService{
		Repo:         r,
		Cache:        cache,
		Jobs:         jobs,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

// SearchByUsername returns up to 10 profile summaries ranked by text
// relevance, email redacted. The second return reports whether the
// result came from the cache. On a miss the cache is populated with a
// 300s TTL in the background, after the results are already on their
// way to the client; a populate failure forgoes caching, never
// correctness.
func (s *ProfileService) SearchByUsername(ctx context.Context, query string) ([]entity.UserSummary, bool, error) {
	if query == "" {
		return nil, false, ErrEmptyQuery
	}

	key := searchKey(query)
	raw, hit, err := s.Cache.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache probe %s: %w", key, err)
	}
	if hit {
		var cached []entity.UserSummary
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			return nil, false, fmt.Errorf("decode cached search %s: %w", key, err)
		}
		return cached, true, nil
	}

	results, err := s.Repo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, false, err
	}

	go s.populateSearchCache(key, results)

	return results, false, nil
}

func (s *ProfileService) populateSearchCache(key string, results []entity.UserSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), populateTimeout)
	defer cancel()

	b, err := json.Marshal(results)
	if err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("marshal search cache entry failed")
		return
	}
	if err := s.Cache.Set(ctx, key, string(b), searchCacheTTL); err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("populate search cache failed")
	}
}

// CurrentUser returns the profile snapshot for an identity the auth
// collaborator already resolved. The user:<id> entry has no TTL; it
// lives until the cache store evicts it.
func (s *ProfileService) CurrentUser(ctx context.Context, userID string) (*entity.UserProfile, error) {
	key := userKey(userID)
	raw, hit, err := s.Cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache probe %s: %w", key, err)
	}
	if hit {
		u := &entity.UserProfile{}
		if err := json.Unmarshal([]byte(raw), u); err != nil {
			return nil, fmt.Errorf("decode cached user %s: %w", key, err)
		}
		return u, nil
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, string(b), 0); err != nil {
		return nil, fmt.Errorf("populate user cache %s: %w", key, err)
	}

	return u, nil
}

// UpdateProfileInput distinguishes absent fields (nil, keep current
// value) from set fields, including an explicitly cleared bio.
type UpdateProfileInput struct {
	Username *string
	Bio      *string
	Avatar   *string
}

// UpdateProfile applies a partial update and persists it. An avatar
// payload is handed to the background worker queue; the avatar_url is
// written later by the worker, not here. The user:<id> cache entry is
// intentionally left alone, so cached reads can stay stale until the
// cache store evicts the snapshot.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.UserProfile, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.Avatar != nil && *in.Avatar != "" {
		job := entity.AvatarJob{UserID: userID, ImagePath: *in.Avatar}
		if err := s.Jobs.PublishJSON(ctx, job); err != nil {
			// Best effort: the profile update itself must not fail
			// because the job queue is down.
			s.Logger.WithError(err).WithField("user_id", userID).Warn("enqueue avatar job failed")
		}
	}

	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.indexUser(ctx, u)
	return u, nil
}

// indexUser mirrors the profile into the discovery index, best effort.
// This service only writes the index; search reads go to the primary
// store.
func (s *ProfileService) indexUser(ctx context.Context, u *entity.UserProfile) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
		"updated_at": u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}
