package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tasknest/backend/config"
	"github.com/tasknest/backend/controllers"
	"github.com/tasknest/backend/database"
	"github.com/tasknest/backend/middleware"
	"github.com/tasknest/backend/pkg/logger"
	"github.com/tasknest/backend/services"
	"github.com/tasknest/backend/utils"
)

func main() {
	// Missing .env is fine in deployed environments, variables come from
	// the platform.
	_ = godotenv.Load()
	log := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		// No signing secret means every token would be forgeable.
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var store database.Store
	if cfg.MongoURI != "" {
		client, err := database.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("mongodb connection failed")
		}
		store = database.NewMongoStore(client.Database(cfg.DatabaseName))
		log.Info().Str("database", cfg.DatabaseName).Msg("connected to MongoDB")
	} else {
		store = database.NewMemoryStore()
		log.Warn().Msg("MONGODB_URI not set, using in-memory store (data is lost on restart)")
	}

	if cfg.AdminEmail != "" {
		if err := utils.SeedAdminUser(ctx, store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("admin seeding failed")
		}
	}

	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTPConfigured() {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	resetTokens := services.NewResetTokenService(store, cfg.ResetTTL)
	auth := services.NewAuthService(store, resetTokens, mailer, cfg.JWTSecret, cfg.TokenTTL)
	tasks := services.NewTaskService(store)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	authed := middleware.AuthMiddleware(cfg.JWTSecret, auth)

	r.POST("/auth/register", controllers.Register(auth))
	r.POST("/auth/login", controllers.Login(auth))
	r.GET("/auth/me", authed, controllers.GetCurrentUser())
	r.POST("/auth/forgot-password", controllers.ForgotPassword(auth))
	r.POST("/auth/reset-password", controllers.ResetPassword(auth))
	r.POST("/auth/change-password", authed, controllers.ChangePassword(auth))

	taskRoutes := r.Group("/tasks")
	taskRoutes.Use(authed)
	{
		taskRoutes.GET("", controllers.GetTasks(tasks))
		taskRoutes.GET("/:id", controllers.GetTask(tasks))
		taskRoutes.POST("", controllers.CreateTask(tasks))
		taskRoutes.PATCH("/:id", controllers.UpdateTask(tasks))
		taskRoutes.DELETE("/:id", controllers.DeleteTask(tasks))
	}

	admin := r.Group("/admin")
	admin.Use(authed, middleware.AdminOnly())
	{
		admin.GET("/users", controllers.GetUsers(auth))
		admin.GET("/tasks", controllers.GetAllTasks(tasks))
		admin.GET("/users/:userId/tasks", controllers.GetUserTasks(tasks))
		admin.GET("/users/:userId", controllers.GetUserDetails(auth, tasks))
	}

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
