package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/clevercards-backend/config"
	"github.com/vnkhanh/clevercards-backend/controllers"
	"github.com/vnkhanh/clevercards-backend/middleware"
	"github.com/vnkhanh/clevercards-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	controllers.InitServices(db, config.Redis)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.Use(middleware.DBMiddleware(db))
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	// Route public: xem không cần đăng nhập, có token thì xem được quiz riêng của mình
	quizzes := api.Group("/quizzes")
	{
		quizzes.Use(middleware.OptionalAuthMiddleware(), middleware.DBMiddleware(db))
		quizzes.GET("/public", controllers.GetPublicQuizzes)
		quizzes.GET("/search", controllers.SearchQuizzes)
		quizzes.GET("/:id", controllers.GetQuizDetail)
		quizzes.GET("/:id/questions", controllers.GetQuizQuestions)
	}

	user := api.Group("/user")
	{
		user.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))

		// Luồng tạo quiz: shell -> details -> questions -> finish
		user.POST("/quizzes", controllers.CreateQuiz)
		user.GET("/quizzes", controllers.GetMyQuizzes)
		user.POST("/quizzes/:id/link", controllers.LinkQuiz)
		user.PUT("/quizzes/:id/details", controllers.UpdateQuizDetails)
		user.POST("/quizzes/:id/questions", controllers.AddQuestion)
		user.POST("/quizzes/:id/finish", controllers.FinishQuiz)
		user.GET("/quizzes/:id/share", controllers.ShareQuiz)

		// Lịch sử ôn tập
		user.POST("/quizzes/:id/practice", controllers.RecordPractice)
		user.GET("/practice/recent", controllers.GetRecentlyPracticed)

		user.PUT("/password", controllers.ChangePassword)
	}

	r.GET("/ws/quiz/:id", ws.HandleQuizWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
