package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/service"
	"liftlog/workout-engine/internal/storage"
)

// WorkoutHandler serves the workout aggregate endpoints.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	images         storage.ImageSigner
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService, images storage.ImageSigner) *WorkoutHandler {
	if images == nil {
		images = storage.Passthrough{}
	}
	return &WorkoutHandler{workoutService: workoutService, images: images}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateWorkoutRequest defines the expected JSON for a quick workout.
type CreateWorkoutRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
	CopyCount   *int    `json:"copyCount" binding:"omitempty,min=0"`
	UserID      string  `json:"userId"` // must be empty or the token user
}

// CreateExampleWorkoutRequest asks for a workout built from the catalog.
type CreateExampleWorkoutRequest struct {
	Muscle string `json:"muscle" binding:"required"`
}

// SetRequest is one desired set; missing reps/weight take the engine defaults.
type SetRequest struct {
	Reps   *int     `json:"reps" binding:"omitempty,min=0"`
	Weight *float64 `json:"weight" binding:"omitempty,min=0"`
	Time   *int     `json:"time" binding:"omitempty,min=0"`
	Rest   *int     `json:"rest" binding:"omitempty,min=0"`
}

// ExerciseRequest is one desired exercise with its sets.
type ExerciseRequest struct {
	Name            string       `json:"name"`
	Instructions    string       `json:"instructions"`
	Type            string       `json:"type"`
	Muscle          string       `json:"muscle"`
	Equipment       string       `json:"equipment"`
	EquipmentNeeded bool         `json:"equipmentNeeded"`
	Difficulty      string       `json:"difficulty"`
	Time            *int         `json:"time" binding:"omitempty,min=0"`
	Image           *string      `json:"image"`
	Sets            []SetRequest `json:"sets" binding:"dive"`
}

// ReconcileWorkoutRequest carries the header and the complete desired exercise list.
type ReconcileWorkoutRequest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Notes       *string           `json:"notes"`
	CopyCount   *int              `json:"copyCount" binding:"omitempty,min=0"`
	UserID      string            `json:"userId"` // must be empty or the token user
	Exercises   []ExerciseRequest `json:"exercises" binding:"dive"`
}

func (r ReconcileWorkoutRequest) toDomain() (domain.WorkoutHeader, []domain.ExerciseSpec) {
	header := domain.WorkoutHeader{
		Name:        r.Name,
		Description: r.Description,
		Notes:       r.Notes,
		CopyCount:   r.CopyCount,
		UserID:      r.UserID,
	}
	specs := make([]domain.ExerciseSpec, len(r.Exercises))
	for i, e := range r.Exercises {
		sets := make([]domain.SetSpec, len(e.Sets))
		for j, s := range e.Sets {
			sets[j] = domain.SetSpec{Reps: s.Reps, Weight: s.Weight, Time: s.Time, Rest: s.Rest}
		}
		specs[i] = domain.ExerciseSpec{
			Name:            e.Name,
			Instructions:    e.Instructions,
			Type:            e.Type,
			Muscle:          e.Muscle,
			Equipment:       e.Equipment,
			EquipmentNeeded: e.EquipmentNeeded,
			Difficulty:      e.Difficulty,
			Time:            e.Time,
			Image:           e.Image,
			Sets:            sets,
		}
	}
	return header, specs
}

type SetResponse struct {
	ID     string  `json:"id"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Time   *int    `json:"time"`
	Rest   *int    `json:"rest"`
}

type ExerciseResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Instructions    string        `json:"instructions"`
	Type            string        `json:"type"`
	Muscle          string        `json:"muscle"`
	Equipment       string        `json:"equipment"`
	EquipmentNeeded bool          `json:"equipmentNeeded"`
	Difficulty      string        `json:"difficulty"`
	Time            *int          `json:"time"`
	Image           *string       `json:"image"`
	Sets            []SetResponse `json:"sets"`
}

// WorkoutResponse is the full workout tree.
type WorkoutResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	Notes       *string            `json:"notes"`
	CopyCount   int                `json:"copyCount"`
	CopyID      *string            `json:"copyId"`
	Exercises   []ExerciseResponse `json:"exercises"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// MapWorkoutToResponse converts a workout tree to its DTO. Image object keys
// are replaced by signed URLs.
func MapWorkoutToResponse(ctx context.Context, images storage.ImageSigner, w *domain.Workout) (WorkoutResponse, error) {
	if w == nil {
		return WorkoutResponse{}, nil
	}
	resp := WorkoutResponse{
		ID:          w.ID,
		UserID:      w.UserID,
		Name:        w.Name,
		Description: w.Description,
		Notes:       w.Notes,
		CopyCount:   w.CopyCount,
		CopyID:      w.CopyID,
		Exercises:   make([]ExerciseResponse, len(w.Exercises)),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for i, e := range w.Exercises {
		image := e.Image
		if image != nil && storage.IsObjectKey(*image) {
			url, err := images.SignImageURL(ctx, *image)
			if err != nil {
				return WorkoutResponse{}, err
			}
			image = &url
		}
		sets := make([]SetResponse, len(e.Sets))
		for j, s := range e.Sets {
			sets[j] = SetResponse{ID: s.ID, Reps: s.Reps, Weight: s.Weight, Time: s.Time, Rest: s.Rest}
		}
		resp.Exercises[i] = ExerciseResponse{
			ID:              e.ID,
			Name:            e.Name,
			Instructions:    e.Instructions,
			Type:            e.Type,
			Muscle:          e.Muscle,
			Equipment:       e.Equipment,
			EquipmentNeeded: e.EquipmentNeeded,
			Difficulty:      e.Difficulty,
			Time:            e.Time,
			Image:           image,
			Sets:            sets,
		}
	}
	return resp, nil
}

func (h *WorkoutHandler) respondWithWorkout(c *gin.Context, code int, w *domain.Workout) {
	resp, err := MapWorkoutToResponse(c.Request.Context(), h.images, w)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to sign exercise images.")
		return
	}
	c.JSON(code, resp)
}

// requireOwner loads the workout and aborts unless the token user owns it.
func (h *WorkoutHandler) requireOwner(c *gin.Context) bool {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return false
	}
	w, err := h.workoutService.GetWorkout(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return false
	}
	if w.UserID != userID {
		abortWithError(c, http.StatusForbidden, "Access denied: workout belongs to another user")
		return false
	}
	return true
}

// sameUserOrEmpty aborts with 403 when a body userId names someone other than
// the token user. Workouts cannot be created in, or handed over to, another account.
func sameUserOrEmpty(c *gin.Context, bodyUserID, tokenUserID string) bool {
	if bodyUserID != "" && bodyUserID != tokenUserID {
		abortWithError(c, http.StatusForbidden, "Access denied: userId must match the authenticated user")
		return false
	}
	return true
}

// --- Handler Methods ---

// CreateWorkout handles POST /workouts.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	if !sameUserOrEmpty(c, req.UserID, userID) {
		return
	}
	req.UserID = userID

	w, err := h.workoutService.CreateWorkout(c.Request.Context(), domain.WorkoutHeader{
		Name:        req.Name,
		Description: req.Description,
		Notes:       req.Notes,
		CopyCount:   req.CopyCount,
		UserID:      req.UserID,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.respondWithWorkout(c, http.StatusCreated, w)
}

// CreateExampleWorkout handles POST /workouts/examples for the token user.
func (h *WorkoutHandler) CreateExampleWorkout(c *gin.Context) {
	var req CreateExampleWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	w, err := h.workoutService.CreateExampleWorkout(c.Request.Context(), userID, req.Muscle)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.respondWithWorkout(c, http.StatusCreated, w)
}

// GetWorkout handles GET /workouts/:workoutId.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	w, err := h.workoutService.GetWorkout(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.respondWithWorkout(c, http.StatusOK, w)
}

// ReconcileWorkout handles PUT /workouts/:workoutId.
func (h *WorkoutHandler) ReconcileWorkout(c *gin.Context) {
	var req ReconcileWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if !h.requireOwner(c) {
		return
	}
	userID, _ := getUserIDFromContext(c)
	if !sameUserOrEmpty(c, req.UserID, userID) {
		return
	}

	header, specs := req.toDomain()
	w, err := h.workoutService.ReconcileWorkout(c.Request.Context(), c.Param("workoutId"), header, specs)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.respondWithWorkout(c, http.StatusOK, w)
}

// CopyWorkout handles POST /workouts/:workoutId/copy; the copy belongs to the token user.
func (h *WorkoutHandler) CopyWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	w, err := h.workoutService.CopyWorkout(c.Request.Context(), c.Param("workoutId"), userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.respondWithWorkout(c, http.StatusCreated, w)
}

// DeleteWorkout handles DELETE /workouts/:workoutId and returns the deleted tree.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	if !h.requireOwner(c) {
		return
	}

	w, err := h.workoutService.DeleteWorkout(c.Request.Context(), c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	h.respondWithWorkout(c, http.StatusOK, w)
}
