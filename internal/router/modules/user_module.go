package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-profile-service/internal/container"
	handlers "github.com/oksasatya/user-profile-service/internal/interface/http"
	"github.com/oksasatya/user-profile-service/internal/interface/middleware"
	"github.com/oksasatya/user-profile-service/pkg/helpers"
)

// UserModule wires the profile handlers and auth middleware into routes.
// Protected: GET /api/users/:username (search), GET /api/users/me,
// PUT /api/users/me, POST /api/users/me/friends/remove.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(container.GetRedis(), m.JWT))
	users.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		// "me" routes first so the search wildcard does not shadow them
		users.GET("/me", m.Handler.Me)
		users.PUT("/me", m.Handler.UpdateMe)
		users.POST("/me/friends/remove", m.Handler.RemoveFriend)
		users.GET("/:username", m.Handler.Search)
	}
}
