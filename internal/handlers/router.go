package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-session-service/internal/services"
	"github.com/SAP-F-2025/quiz-session-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	quizHandler *QuizHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		quizHandler: NewQuizHandler(serviceManager.Quiz(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(RequestContext())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "quiz-session-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)

			// Learner-scoped routes
			learner := quizzes.Group("/:id", RequireLearner())
			learner.GET("/history", hm.quizHandler.GetHistory)
			learner.GET("/history/export", hm.quizHandler.ExportHistory)
			learner.POST("/retake", hm.quizHandler.Retake)
		}

		v1.POST("/quiz-results", RequireLearner(), hm.quizHandler.SubmitResults)
	}
}
