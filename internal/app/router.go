package app

import (
	"net/http"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/config"
	"github.com/kamruz-zzaman/portfolio-v2/internal/database"
	"github.com/kamruz-zzaman/portfolio-v2/internal/middleware"
	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"
	"github.com/kamruz-zzaman/portfolio-v2/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Posts        service.PostService
	Projects     service.ProjectService
	Comments     service.CommentService
	Interactions service.InteractionService
	Dashboard    service.DashboardService
	Uploader     ImageUploader
}

// NewServices wires repositories and services over one database handle.
// redisClient and activity may be nil.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *util.RedisClient, activity service.ActivityService) Services {
	userRepo := repository.NewUserRepository(db, redisClient)
	postRepo := repository.NewPostRepository(db, redisClient)
	projectRepo := repository.NewProjectRepository(db, redisClient)
	commentRepo := repository.NewCommentRepository(db, redisClient)
	interactionRepo := repository.NewInteractionRepository(db, redisClient)

	interactionService := service.NewInteractionService(interactionRepo, activity)

	return Services{
		Auth:         service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry),
		Posts:        service.NewPostService(postRepo, interactionService),
		Projects:     service.NewProjectService(projectRepo),
		Comments:     service.NewCommentService(commentRepo, postRepo, userRepo, interactionService, activity),
		Interactions: interactionService,
		Dashboard:    service.NewDashboardService(postRepo, projectRepo, commentRepo, userRepo, interactionRepo),
	}
}

// RouterOptions carries the optional pieces of the router. Nil fields
// disable the matching feature.
type RouterOptions struct {
	DB          *gorm.DB
	Redis       *util.RedisClient
	Hub         *websocket.Hub
	RateLimiter *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, svc Services, opts RouterOptions) *gin.Engine {
	if cfg.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	r := gin.Default()
	r.Use(middleware.SecureHeaders())

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{cfg.ClientURL}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware())
	}

	authHandler := NewAuthHandler(svc.Auth, cfg.JWTSecret)
	postHandler := NewPostHandler(svc.Posts)
	projectHandler := NewProjectHandler(svc.Projects)
	commentHandler := NewCommentHandler(svc.Comments)
	interactionHandler := NewInteractionHandler(svc.Interactions)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, svc.Auth)
	uploadHandler := NewUploadHandler(svc.Uploader)

	requireAuth := authHandler.AuthMiddleware()
	requireAdmin := authHandler.AdminMiddleware()
	optionalAuth := authHandler.OptionalAuth()

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetMe)
		}

		user := api.Group("/user", requireAuth)
		{
			user.PUT("/profile", authHandler.UpdateProfile)
			user.PUT("/password", authHandler.ChangePassword)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", optionalAuth, postHandler.ListPosts)
			posts.GET("/trending", optionalAuth, postHandler.Trending)
			posts.GET("/slug/:slug", optionalAuth, postHandler.GetPostBySlug)
			posts.GET("/:id", optionalAuth, postHandler.GetPost)

			posts.POST("/:id/interactions", requireAuth, interactionHandler.RecordPost)
			posts.DELETE("/:id/interactions", requireAuth, interactionHandler.RemovePost)

			posts.POST("", requireAuth, requireAdmin, postHandler.CreatePost)
			posts.PUT("/:id", requireAuth, requireAdmin, postHandler.UpdatePost)
			posts.DELETE("/:id", requireAuth, requireAdmin, postHandler.DeletePost)
		}

		comments := api.Group("/comments")
		{
			comments.GET("", optionalAuth, commentHandler.ListComments)
			comments.GET("/:id", commentHandler.GetComment)

			comments.POST("", requireAuth, commentHandler.CreateComment)
			comments.PUT("/:id", requireAuth, commentHandler.UpdateComment)
			comments.DELETE("/:id", requireAuth, commentHandler.DeleteComment)

			comments.POST("/:id/interactions", requireAuth, interactionHandler.LikeComment)
			comments.DELETE("/:id/interactions", requireAuth, interactionHandler.UnlikeComment)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:slug", projectHandler.GetProject)

			projects.POST("", requireAuth, requireAdmin, projectHandler.CreateProject)
			projects.PUT("/:id", requireAuth, requireAdmin, projectHandler.UpdateProject)
			projects.DELETE("/:id", requireAuth, requireAdmin, projectHandler.DeleteProject)
		}

		dashboard := api.Group("/dashboard", requireAuth, requireAdmin)
		{
			dashboard.GET("/stats", dashboardHandler.Stats)
			dashboard.GET("/activities", dashboardHandler.Activities)
			dashboard.GET("/analytics", dashboardHandler.Analytics)
			dashboard.GET("/users", dashboardHandler.ListUsers)
			dashboard.PUT("/users/:id/role", dashboardHandler.UpdateUserRole)
		}

		api.POST("/upload", requireAuth, requireAdmin, uploadHandler.Upload)
	}

	if opts.Hub != nil {
		upgrader := websocket.NewUpgrader(origins)
		wsHandler := websocket.ServeWS(opts.Hub, cfg.JWTSecret, upgrader)
		r.GET("/ws", func(c *gin.Context) {
			wsHandler.ServeHTTP(c.Writer, c.Request)
		})
	}

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if opts.DB != nil {
			dbHealth := database.Health(c.Request.Context(), opts.DB)
			body["database"] = dbHealth
			if dbHealth["status"] != "up" {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		if opts.Redis != nil {
			if err := opts.Redis.Ping(c.Request.Context()); err != nil {
				body["redis"] = "down"
			} else {
				body["redis"] = "up"
			}
		}
		c.JSON(status, body)
	})

	return r
}
