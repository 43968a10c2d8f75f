package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"study-plan/internal/middleware"
	"study-plan/internal/service"
)

type Deps struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Planner    *service.Planner
	Classifier *service.ClassifierService
	JWT        *middleware.JWT
}

func NewRouter(d Deps) *gin.Engine {
	authH := NewAuthHandler(d.Auth, d.JWT)
	userH := NewUserHandler(d.Users)
	habitH := NewHabitHandler(d.Users)
	taskH := NewTaskHandler(d.Users)
	recH := NewRecommendationHandler(d.Planner)
	predH := NewPredictHandler(d.Classifier, d.Users)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.AccessLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-New-Token"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/predict", predH.Predict)
	r.POST("/predict/", predH.Predict)
	r.POST("/users/register", authH.Register)
	r.POST("/users/login", authH.Login)

	u := r.Group("/users/:id", d.JWT.Auth(), middleware.Owner())
	u.GET("", userH.Get)
	u.PUT("", userH.Update)
	u.DELETE("", userH.Delete)
	u.PATCH("/password", authH.ChangePassword)

	u.GET("/emotions", userH.Emotions)
	u.POST("/emotions", userH.LogEmotion)
	u.POST("/emotions/detect", predH.Detect)

	u.GET("/habits", habitH.List)
	u.POST("/habits", habitH.Create)
	u.GET("/habits/:habit_id", habitH.Get)
	u.PUT("/habits/:habit_id", habitH.Update)
	u.PATCH("/habits/:habit_id", habitH.Update)
	u.PATCH("/habits/:habit_id/progress", habitH.Progress)
	u.PATCH("/habits/:habit_id/status", habitH.Progress)
	u.DELETE("/habits/:habit_id", habitH.Delete)

	u.GET("/tasks", taskH.List)
	u.POST("/tasks", taskH.Create)
	u.GET("/tasks/:task_id", taskH.Get)
	u.PUT("/tasks/:task_id", taskH.Update)
	u.PATCH("/tasks/:task_id", taskH.Update)
	u.PATCH("/tasks/:task_id/status", taskH.Status)
	u.DELETE("/tasks/:task_id", taskH.Delete)

	u.GET("/recommendations", recH.Today)
	u.PATCH("/daily_recommendations/tasks/:task_id/status", recH.TaskStatus)
	u.PATCH("/daily_recommendations/habits/:habit_id/complete", recH.CompleteHabit)

	return r
}
