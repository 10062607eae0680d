package application

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-profile-service/internal/domain/entity"
	repo "github.com/oksasatya/user-profile-service/internal/domain/repository"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupProfileServiceTest() (*ProfileService, *MockUserRepository, *MockCache, *MockJobQueue) {
	mockRepo := new(MockUserRepository)
	mockCache := new(MockCache)
	mockJobs := new(MockJobQueue)
	svc := NewProfileService(mockRepo, mockCache, mockJobs, testLogger(), nil, "")
	return svc, mockRepo, mockCache, mockJobs
}

func TestProfileService_SearchByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query is a client error, no store access", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()

		_, _, err := svc.SearchByUsername(ctx, "")
		require.ErrorIs(t, err, ErrEmptyQuery)
		mockCache.AssertNotCalled(t, "Get")
		mockRepo.AssertNotCalled(t, "Search")
	})

	t.Run("cache hit returns cached list verbatim", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()
		cached := []entity.UserSummary{
			{ID: "u1", Username: "alice_wonder", Score: 0.9},
			{ID: "u2", Username: "alice_baker", Score: 0.4},
		}
		raw, err := json.Marshal(cached)
		require.NoError(t, err)
		mockCache.On("Get", ctx, "search:alice").Return(string(raw), true, nil).Once()

		results, fromCache, err := svc.SearchByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, fromCache)
		assert.Equal(t, cached, results)
		mockRepo.AssertNotCalled(t, "Search")
		mockCache.AssertExpectations(t)
	})

	t.Run("cache miss queries the store and populates with 300s TTL", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()
		found := []entity.UserSummary{{ID: "u1", Username: "alice_wonder", Score: 0.9}}
		raw, err := json.Marshal(found)
		require.NoError(t, err)

		populated := make(chan struct{})
		mockCache.On("Get", ctx, "search:alice").Return("", false, nil).Once()
		mockRepo.On("Search", ctx, "alice", 10).Return(found, nil).Once()
		mockCache.On("Set", mock.Anything, "search:alice", string(raw), 300*time.Second).
			Return(nil).Once().
			Run(func(mock.Arguments) { close(populated) })

		results, fromCache, err := svc.SearchByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, fromCache)
		assert.Equal(t, found, results)

		// Population is asynchronous; the response never waits on it.
		select {
		case <-populated:
		case <-time.After(2 * time.Second):
			t.Fatal("cache was not populated")
		}
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("populate failure does not affect the result", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()
		found := []entity.UserSummary{{ID: "u1", Username: "alice_wonder", Score: 0.9}}

		attempted := make(chan struct{})
		mockCache.On("Get", ctx, "search:alice").Return("", false, nil).Once()
		mockRepo.On("Search", ctx, "alice", 10).Return(found, nil).Once()
		mockCache.On("Set", mock.Anything, "search:alice", mock.Anything, mock.Anything).
			Return(assert.AnError).Once().
			Run(func(mock.Arguments) { close(attempted) })

		results, _, err := svc.SearchByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, results, 1)
		<-attempted
	})

	t.Run("repeated search within TTL returns byte-identical payload without store access", func(t *testing.T) {
		cache := newFakeCache()
		mockRepo := new(MockUserRepository)
		svc := NewProfileService(mockRepo, cache, new(MockJobQueue), testLogger(), nil, "")
		found := []entity.UserSummary{
			{ID: "u1", Username: "alice_wonder", Bio: "down the rabbit hole", Score: 0.9},
			{ID: "u2", Username: "alice_baker", Score: 0.4},
		}
		mockRepo.On("Search", ctx, "alice", 10).Return(found, nil).Once()

		first, fromCache, err := svc.SearchByUsername(ctx, "alice")
		require.NoError(t, err)
		require.False(t, fromCache)

		require.Eventually(t, func() bool {
			_, ok, _ := cache.Get(ctx, "search:alice")
			return ok
		}, 2*time.Second, 10*time.Millisecond)

		firstRaw, _, _ := cache.Get(ctx, "search:alice")

		second, fromCache, err := svc.SearchByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, fromCache)
		assert.Equal(t, first, second)

		secondRaw, _, _ := cache.Get(ctx, "search:alice")
		assert.Equal(t, firstRaw, secondRaw)
		assert.Equal(t, 300*time.Second, cache.ttls["search:alice"])
		mockRepo.AssertExpectations(t) // Search ran exactly once
	})

	t.Run("cache probe failure surfaces as dependency error", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()
		mockCache.On("Get", ctx, "search:alice").Return("", false, assert.AnError).Once()

		_, _, err := svc.SearchByUsername(ctx, "alice")
		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockRepo.AssertNotCalled(t, "Search")
	})
}

func TestProfileService_CurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the store", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()
		u := &entity.UserProfile{ID: "42", Username: "alice_wonder", Email: "alice@example.com"}
		raw, _ := json.Marshal(u)
		mockCache.On("Get", ctx, "user:42").Return(string(raw), true, nil).Once()

		got, err := svc.CurrentUser(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, u, got)
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("cache miss fetches and populates without TTL", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()
		u := &entity.UserProfile{ID: "42", Username: "alice_wonder", Friends: []string{"7"}}
		raw, _ := json.Marshal(u)
		mockCache.On("Get", ctx, "user:42").Return("", false, nil).Once()
		mockRepo.On("GetByID", ctx, "42").Return(u, nil).Once()
		mockCache.On("Set", ctx, "user:42", string(raw), time.Duration(0)).Return(nil).Once()

		got, err := svc.CurrentUser(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, u, got)
		mockCache.AssertExpectations(t)
	})

	t.Run("absent user maps to not found", func(t *testing.T) {
		svc, mockRepo, mockCache, _ := setupProfileServiceTest()
		mockCache.On("Get", ctx, "user:42").Return("", false, nil).Once()
		mockRepo.On("GetByID", ctx, "42").Return(nil, repo.ErrNotFound).Once()

		_, err := svc.CurrentUser(ctx, "42")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func strptr(s string) *string { return &s }

func TestProfileService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("absent user maps to not found", func(t *testing.T) {
		svc, mockRepo, _, mockJobs := setupProfileServiceTest()
		mockRepo.On("GetByID", ctx, "42").Return(nil, repo.ErrNotFound).Once()

		_, err := svc.UpdateProfile(ctx, "42", UpdateProfileInput{Username: strptr("new_name")})
		require.ErrorIs(t, err, ErrUserNotFound)
		mockJobs.AssertNotCalled(t, "PublishJSON")
	})

	t.Run("absent fields keep current values, set fields overwrite", func(t *testing.T) {
		svc, mockRepo, _, _ := setupProfileServiceTest()
		current := &entity.UserProfile{ID: "42", Username: "alice_wonder", Bio: "old bio"}
		mockRepo.On("GetByID", ctx, "42").Return(current, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(u *entity.UserProfile) bool {
			return u.Username == "alice_wonder" && u.Bio == ""
		})).Return(nil).Once()

		u, err := svc.UpdateProfile(ctx, "42", UpdateProfileInput{Bio: strptr("")})
		require.NoError(t, err)
		assert.Equal(t, "alice_wonder", u.Username)
		assert.Equal(t, "", u.Bio)
		mockRepo.AssertExpectations(t)
	})

	t.Run("avatar payload enqueues a background job", func(t *testing.T) {
		svc, mockRepo, _, mockJobs := setupProfileServiceTest()
		current := &entity.UserProfile{ID: "42", Username: "alice_wonder"}
		mockRepo.On("GetByID", ctx, "42").Return(current, nil).Once()
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
		mockJobs.On("PublishJSON", ctx, entity.AvatarJob{UserID: "42", ImagePath: "aW1hZ2U="}).Return(nil).Once()

		_, err := svc.UpdateProfile(ctx, "42", UpdateProfileInput{Avatar: strptr("aW1hZ2U=")})
		require.NoError(t, err)
		mockJobs.AssertExpectations(t)
	})

	t.Run("job queue failure does not fail the update", func(t *testing.T) {
		svc, mockRepo, _, mockJobs := setupProfileServiceTest()
		current := &entity.UserProfile{ID: "42", Username: "alice_wonder"}
		mockRepo.On("GetByID", ctx, "42").Return(current, nil).Once()
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
		mockJobs.On("PublishJSON", ctx, mock.Anything).Return(assert.AnError).Once()

		_, err := svc.UpdateProfile(ctx, "42", UpdateProfileInput{Avatar: strptr("aW1hZ2U=")})
		require.NoError(t, err)
	})
}

// The update path deliberately leaves the user:<id> cache entry alone,
// so a cached read after an update observes the pre-update snapshot.
func TestProfileService_UpdateLeavesCachedSnapshotStale(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	mockRepo := new(MockUserRepository)
	svc := NewProfileService(mockRepo, cache, new(MockJobQueue), testLogger(), nil, "")

	before := &entity.UserProfile{ID: "42", Username: "alice_wonder", Bio: "old bio"}
	mockRepo.On("GetByID", ctx, "42").Return(before, nil)
	mockRepo.On("Update", ctx, mock.Anything).Return(nil)

	first, err := svc.CurrentUser(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, "old bio", first.Bio)

	_, err = svc.UpdateProfile(ctx, "42", UpdateProfileInput{Bio: strptr("new bio")})
	require.NoError(t, err)

	again, err := svc.CurrentUser(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "old bio", again.Bio, "cached snapshot is expected to stay stale")
}
