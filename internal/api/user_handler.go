package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/service"
)

// UserHandler serves user profile, follower and workout listing endpoints.
type UserHandler struct {
	workoutService service.WorkoutService
	followService  service.FollowService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(workoutService service.WorkoutService, followService service.FollowService) *UserHandler {
	return &UserHandler{workoutService: workoutService, followService: followService}
}

// UserResponse exposes a user's copy provenance.
type UserResponse struct {
	ID             string    `json:"id"`
	WorkoutsCopied []string  `json:"workoutsCopied"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FollowUserResponse is one entry of a follower or following list.
type FollowUserResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapUsersToFollowResponse converts users to follow list DTOs.
func MapUsersToFollowResponse(users []domain.User) []FollowUserResponse {
	responses := make([]FollowUserResponse, len(users))
	for i, u := range users {
		responses[i] = FollowUserResponse{ID: u.ID, CreatedAt: u.CreatedAt}
	}
	return responses
}

// WorkoutSummaryResponse is one row of a workout list.
type WorkoutSummaryResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CopyCount     int       `json:"copyCount"`
	ExerciseNames []string  `json:"exerciseNames"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MapSummariesToResponse converts workout summaries to their DTOs.
func MapSummariesToResponse(list []domain.WorkoutSummary) []WorkoutSummaryResponse {
	responses := make([]WorkoutSummaryResponse, len(list))
	for i, s := range list {
		responses[i] = WorkoutSummaryResponse{
			ID:            s.ID,
			Name:          s.Name,
			CopyCount:     s.CopyCount,
			ExerciseNames: s.ExerciseNames,
			CreatedAt:     s.CreatedAt,
		}
	}
	return responses
}

// GetUser handles GET /users/:userId.
func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.workoutService.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	copied := u.WorkoutsCopied
	if copied == nil {
		copied = []string{}
	}
	c.JSON(http.StatusOK, UserResponse{ID: u.ID, WorkoutsCopied: copied, CreatedAt: u.CreatedAt})
}

// ListWorkoutsByUser handles GET /users/:userId/workouts?limit=N.
func (h *UserHandler) ListWorkoutsByUser(c *gin.Context) {
	limit := service.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	h.list(c, c.Param("userId"), limit)
}

// ListMyWorkouts handles GET /me/workouts: the token user's most recent workouts.
func (h *UserHandler) ListMyWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	h.list(c, userID, service.RecentListLimit)
}

func (h *UserHandler) list(c *gin.Context, userID string, limit int) {
	list, err := h.workoutService.ListWorkoutsByUser(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSummariesToResponse(list))
}

// FollowUser handles POST /users/:userId/follow: the token user follows :userId.
func (h *UserHandler) FollowUser(c *gin.Context) {
	h.changeFollow(c, h.followService.Follow, http.StatusCreated)
}

// UnfollowUser handles DELETE /users/:userId/follow.
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	h.changeFollow(c, h.followService.Unfollow, http.StatusOK)
}

func (h *UserHandler) changeFollow(c *gin.Context, op func(ctx context.Context, followerID, followingID string) error, code int) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	following := c.Param("userId")
	if err := op(c.Request.Context(), userID, following); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(code, gin.H{"followerId": userID, "followingId": following})
}

// ListFollowers handles GET /users/:userId/followers.
func (h *UserHandler) ListFollowers(c *gin.Context) {
	users, err := h.followService.ListFollowers(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToFollowResponse(users))
}

// ListFollowing handles GET /users/:userId/following.
func (h *UserHandler) ListFollowing(c *gin.Context) {
	users, err := h.followService.ListFollowing(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToFollowResponse(users))
}
