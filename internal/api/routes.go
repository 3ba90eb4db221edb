package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"liftlog/workout-engine/internal/service"
	"liftlog/workout-engine/internal/storage"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	limiter *RateLimiter,
	workoutService service.WorkoutService,
	catalogService service.CatalogService,
	followService service.FollowService,
	images storage.ImageSigner,
	gatherer prometheus.Gatherer,
) {
	workoutHandler := NewWorkoutHandler(workoutService, images)
	userHandler := NewUserHandler(workoutService, followService)
	exerciseHandler := NewExerciseHandler(catalogService, images)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret), limiter.Middleware())
	{
		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.POST("/examples", workoutHandler.CreateExampleWorkout)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:workoutId", workoutHandler.ReconcileWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:workoutId/copy", workoutHandler.CopyWorkout)
		}

		// --- User Routes ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("/:userId", userHandler.GetUser)
			userGroup.GET("/:userId/workouts", userHandler.ListWorkoutsByUser)
			userGroup.GET("/:userId/followers", userHandler.ListFollowers)
			userGroup.GET("/:userId/following", userHandler.ListFollowing)
			userGroup.POST("/:userId/follow", userHandler.FollowUser)
			userGroup.DELETE("/:userId/follow", userHandler.UnfollowUser)
		}

		protected.GET("/me/workouts", userHandler.ListMyWorkouts)

		// --- Exercise Catalog Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListCatalog)
			exerciseGroup.POST("", exerciseHandler.UpsertCatalogExercise)
		}
	}
}
