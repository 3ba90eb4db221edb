package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/service"
	"liftlog/workout-engine/internal/storage"
)

// ExerciseHandler serves the exercise catalog.
type ExerciseHandler struct {
	catalogService service.CatalogService
	images         storage.ImageSigner
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(catalogService service.CatalogService, images storage.ImageSigner) *ExerciseHandler {
	if images == nil {
		images = storage.Passthrough{}
	}
	return &ExerciseHandler{catalogService: catalogService, images: images}
}

// UpsertCatalogExerciseRequest defines the expected JSON for a catalog entry.
type UpsertCatalogExerciseRequest struct {
	Name            string  `json:"name" binding:"required"`
	Muscle          string  `json:"muscle" binding:"required"`
	Instructions    string  `json:"instructions"`
	Type            string  `json:"type"`
	Equipment       string  `json:"equipment"`
	EquipmentNeeded bool    `json:"equipmentNeeded"`
	Difficulty      string  `json:"difficulty"`
	Time            *int    `json:"time" binding:"omitempty,min=0"`
	Image           *string `json:"image"`
}

// CatalogExerciseResponse is a catalog entry. Unlike ExerciseResponse it carries no sets.
type CatalogExerciseResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Muscle          string    `json:"muscle"`
	Instructions    string    `json:"instructions"`
	Type            string    `json:"type"`
	Equipment       string    `json:"equipment"`
	EquipmentNeeded bool      `json:"equipmentNeeded"`
	Difficulty      string    `json:"difficulty"`
	Time            *int      `json:"time"`
	Image           *string   `json:"image"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (h *ExerciseHandler) mapExercise(c *gin.Context, e domain.Exercise) (CatalogExerciseResponse, error) {
	image := e.Image
	if image != nil && storage.IsObjectKey(*image) {
		url, err := h.images.SignImageURL(c.Request.Context(), *image)
		if err != nil {
			return CatalogExerciseResponse{}, err
		}
		image = &url
	}
	return CatalogExerciseResponse{
		ID:              e.ID,
		Name:            e.Name,
		Muscle:          e.Muscle,
		Instructions:    e.Instructions,
		Type:            e.Type,
		Equipment:       e.Equipment,
		EquipmentNeeded: e.EquipmentNeeded,
		Difficulty:      e.Difficulty,
		Time:            e.Time,
		Image:           image,
		CreatedAt:       e.CreatedAt,
	}, nil
}

// ListCatalog handles GET /exercises?muscle=M&limit=N.
func (h *ExerciseHandler) ListCatalog(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	list, err := h.catalogService.ListExercises(c.Request.Context(), c.Query("muscle"), limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	responses := make([]CatalogExerciseResponse, len(list))
	for i, e := range list {
		if responses[i], err = h.mapExercise(c, e); err != nil {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Failed to sign exercise images.")
			return
		}
	}
	c.JSON(http.StatusOK, responses)
}

// UpsertCatalogExercise handles POST /exercises.
func (h *ExerciseHandler) UpsertCatalogExercise(c *gin.Context) {
	var req UpsertCatalogExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	e, err := h.catalogService.UpsertExercise(c.Request.Context(), domain.Exercise{
		Name:            req.Name,
		Muscle:          req.Muscle,
		Instructions:    req.Instructions,
		Type:            req.Type,
		Equipment:       req.Equipment,
		EquipmentNeeded: req.EquipmentNeeded,
		Difficulty:      req.Difficulty,
		Time:            req.Time,
		Image:           req.Image,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp, err := h.mapExercise(c, *e)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to sign exercise images.")
		return
	}
	c.JSON(http.StatusOK, resp)
}
