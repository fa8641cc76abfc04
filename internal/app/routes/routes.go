package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unilink/internal/app/controllers"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/middleware"
	"github.com/yigit/unilink/internal/pkg/websocket"
)

// Controllers groups every HTTP controller mounted by SetupRouter
type Controllers struct {
	Auth           *controllers.AuthController
	University     *controllers.UniversityController
	Profile        *controllers.ProfileController
	Event          *controllers.EventController
	Messaging      *controllers.MessagingController
	Post           *controllers.PostController
	Notification   *controllers.NotificationController
	Newsletter     *controllers.NewsletterController
	ExamResult     *controllers.ExamResultController
	Job            *controllers.JobController
	Recommendation *controllers.RecommendationController
	Health         *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	wsHandler *websocket.Handler,
) {
	router.GET("/ping", c.Health.Ping)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", c.Health.Health)

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
	}

	v1.GET("/universities", c.University.ListUniversities)
	v1.GET("/universities/:id", c.University.GetUniversity)
	v1.GET("/credentials/:credentialId", c.ExamResult.GetCredential)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleUniversityAdmin)
	organizers := authMiddleware.RoleRequired(models.RoleAlumni, models.RoleUniversityAdmin)
	{
		authenticated.GET("/auth/me", c.Auth.Me)
		authenticated.POST("/universities", adminOnly, c.University.CreateUniversity)

		profiles := authenticated.Group("/profiles")
		{
			profiles.GET("", c.Profile.ListProfiles)
			profiles.GET("/me", c.Profile.GetMyProfile)
			profiles.PUT("/me", c.Profile.UpdateMyProfile)
			profiles.GET("/:userId", c.Profile.GetProfile)
		}

		events := authenticated.Group("/events")
		{
			events.GET("", c.Event.ListEvents)
			events.GET("/registered", c.Event.ListMyEvents)
			events.GET("/:id", c.Event.GetEvent)
			events.POST("", organizers, c.Event.CreateEvent)
			events.PUT("/:id", c.Event.UpdateEvent)
			events.DELETE("/:id", c.Event.DeleteEvent)
			events.POST("/:id/cancel", c.Event.CancelEvent)

			events.POST("/:id/register", c.Event.RegisterForEvent)
			events.DELETE("/:id/register", c.Event.CancelRegistration)
			events.GET("/:id/registrations", c.Event.ListRegistrations)
			events.PUT("/:id/registrations/:userId", c.Event.UpdateRegistration)
		}

		conversations := authenticated.Group("/conversations")
		{
			conversations.GET("", c.Messaging.ListConversations)
			conversations.POST("", c.Messaging.CreateConversation)
			conversations.GET("/:id/messages", c.Messaging.ListMessages)
			conversations.POST("/:id/messages", c.Messaging.SendMessage)
			conversations.POST("/:id/read", c.Messaging.MarkConversationRead)
		}

		messages := authenticated.Group("/messages")
		{
			messages.POST("", c.Messaging.SendDirectMessage)
			messages.GET("/unread-count", c.Messaging.UnreadCount)
		}

		posts := authenticated.Group("/posts")
		{
			posts.GET("", c.Post.ListPosts)
			posts.POST("", c.Post.CreatePost)
			posts.GET("/:id", c.Post.GetPost)
			posts.PUT("/:id", c.Post.UpdatePost)
			posts.DELETE("/:id", c.Post.DeletePost)
			posts.POST("/:id/like", c.Post.LikePost)
			posts.DELETE("/:id/like", c.Post.UnlikePost)
			posts.POST("/:id/comments", c.Post.CommentOnPost)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", c.Notification.ListNotifications)
			notifications.GET("/unread-count", c.Notification.UnreadCount)
			notifications.PUT("/read-all", c.Notification.MarkAllRead)
			notifications.PUT("/:id/read", c.Notification.MarkRead)
			notifications.DELETE("/:id", c.Notification.DeleteNotification)
		}

		newsletters := authenticated.Group("/newsletters")
		{
			newsletters.GET("", c.Newsletter.ListNewsletters)
			newsletters.GET("/:id", c.Newsletter.GetNewsletter)

			newslettersAdmin := newsletters.Group("")
			newslettersAdmin.Use(adminOnly)
			{
				newslettersAdmin.POST("", c.Newsletter.CreateNewsletter)
				newslettersAdmin.PUT("/:id", c.Newsletter.UpdateNewsletter)
				newslettersAdmin.DELETE("/:id", c.Newsletter.DeleteNewsletter)
				newslettersAdmin.POST("/:id/send", c.Newsletter.SendNewsletter)
			}
		}

		examResults := authenticated.Group("/exam-results")
		{
			examResults.GET("/me", c.ExamResult.ListMyResults)
			examResults.POST("", c.ExamResult.CreateResult)
			examResults.GET("/:id", c.ExamResult.GetResult)
			examResults.DELETE("/:id", c.ExamResult.DeleteResult)

			examResults.GET("", adminOnly, c.ExamResult.ListResults)
			examResults.POST("/:id/verify", adminOnly, c.ExamResult.VerifyResult)
		}

		jobs := authenticated.Group("/jobs")
		{
			jobs.GET("", c.Job.ListJobs)
			jobs.GET("/:id", c.Job.GetJob)
			jobs.POST("", organizers, c.Job.CreateJob)
			jobs.PUT("/:id", c.Job.UpdateJob)
			jobs.DELETE("/:id", c.Job.DeleteJob)
		}

		authenticated.GET("/recommendations/:kind", c.Recommendation.Recommend)

		authenticated.GET("/ws", wsHandler.HandleConnection)
	}
}
