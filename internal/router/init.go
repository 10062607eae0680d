package router

import (
	"github.com/oksasatya/user-profile-service/internal/application"
	"github.com/oksasatya/user-profile-service/internal/container"
	repouser "github.com/oksasatya/user-profile-service/internal/domain/repository"
	"github.com/oksasatya/user-profile-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-profile-service/internal/infrastructure/rediscache"
	handlers "github.com/oksasatya/user-profile-service/internal/interface/http"
	"github.com/oksasatya/user-profile-service/internal/router/modules"
)

type UserModuleDeps struct {
	Repo     repouser.UserRepository
	Profiles *application.ProfileService
	Friends  *application.FriendshipService
	Handler  *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	repo := postgres.NewUserRepository(container.GetPGPool())
	cache := rediscache.New(container.GetRedis())

	profiles := application.NewProfileService(
		repo,
		cache,
		container.GetJobsPub(),
		container.GetLogger(),
		container.GetES(),
		container.GetConfig().ESUsersIndex,
	)

	friends := application.NewFriendshipService(
		repo,
		container.GetPermissions(),
		container.GetEventsPub(),
		container.GetLogger(),
	)

	handler := handlers.NewUserHandler(profiles, friends, container.GetLogger())

	return UserModuleDeps{
		Repo:     repo,
		Profiles: profiles,
		Friends:  friends,
		Handler:  handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler, container.GetJWT()))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
