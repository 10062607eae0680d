package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-profile-service/internal/application"
	"github.com/oksasatya/user-profile-service/pkg/response"
	"github.com/oksasatya/user-profile-service/pkg/validation"
)

type UserHandler struct {
	Profiles *application.ProfileService
	Friends  *application.FriendshipService
	Logger   *logrus.Logger
}

func NewUserHandler(profiles *application.ProfileService, friends *application.FriendshipService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Profiles: profiles, Friends: friends, Logger: logger}
}

type updateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=6,max=30"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar" binding:"omitempty,base64"`
}

type removeFriendRequest struct {
	FriendID string `json:"friend_id" binding:"required,uuid"`
}

// Search handles GET /users/:username. A request body on this GET is a
// client error and the search does not run.
func (h *UserHandler) Search(c *gin.Context) {
	if c.Request.ContentLength > 0 {
		response.Error[any](c, http.StatusBadRequest, "body not allowed", nil)
		return
	}
	query := c.Param("username")

	results, cached, err := h.Profiles.SearchByUsername(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, application.ErrEmptyQuery) {
			response.Error[any](c, http.StatusBadRequest, "username required", nil)
			return
		}
		h.Logger.WithError(err).WithField("query", query).Error("user search failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	response.Success(c, http.StatusOK, results, "search results", gin.H{"cached_result": cached})
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString("userID")

	u, err := h.Profiles.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("get current user failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	response.Success(c, http.StatusOK, u, "current user", nil)
}

// UpdateMe handles PUT /users/me. Absent fields keep their current
// values; a present empty bio clears it.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid := c.GetString("userID")

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Profiles.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("update profile failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	response.Success(c, http.StatusCreated, u, "profile updated successfully", nil)
}

// RemoveFriend handles POST /users/me/friends/remove. A reported
// failure can still mean the edge removal committed; clients should
// re-check state before retrying.
func (h *UserHandler) RemoveFriend(c *gin.Context) {
	uid := c.GetString("userID")

	var req removeFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Friends.RemoveFriend(c.Request.Context(), uid, req.FriendID); err != nil {
		if errors.Is(err, application.ErrSelfRemoval) {
			response.Error[any](c, http.StatusBadRequest, "cannot unfriend yourself", nil)
			return
		}
		h.Logger.WithError(err).WithFields(logrus.Fields{"user_id": uid, "friend_id": req.FriendID}).Error("remove friend failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	response.Success[any](c, http.StatusOK, gin.H{"removed": true}, "friend removed successfully", nil)
}
