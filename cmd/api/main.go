package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/yourusername/millionaire-api/internal/config"
	"github.com/yourusername/millionaire-api/internal/domain/repository"
	"github.com/yourusername/millionaire-api/internal/handler"
	"github.com/yourusername/millionaire-api/internal/middleware"
	pgRepo "github.com/yourusername/millionaire-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/millionaire-api/internal/repository/redis"
	"github.com/yourusername/millionaire-api/internal/service"
	"github.com/yourusername/millionaire-api/internal/service/gameengine"
	"github.com/yourusername/millionaire-api/internal/websocket"
	"github.com/yourusername/millionaire-api/pkg/auth"
	"github.com/yourusername/millionaire-api/pkg/database"
)

var defaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8000"}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	isProduction := gin.Mode() == gin.ReleaseMode

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Redis не обязателен: без него нет блокировки создания игры, кеша и rate limit
	var redisClient redis.UniversalClient
	var cacheRepo repository.CacheRepository
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Println("Successfully connected to Redis")

		redisCache, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		cacheRepo = redisCache
	} else {
		log.Println("Redis не настроен, работаем без кеша и блокировок")
	}

	// Репозитории
	userRepo := pgRepo.NewUserRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	gameRepo := pgRepo.NewGameRepo(db, userRepo)

	// Правила и движок игры
	rules, err := gameengine.DefaultRules().WithTimeLimit(cfg.Game.TimeLimit())
	if err != nil {
		log.Printf("Invalid game rules: %v", err)
		os.Exit(1)
	}
	engine := gameengine.NewEngine(rules, gameengine.SystemClock{}, nil)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Сервисы
	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	gameService, err := service.NewGameService(gameRepo, questionRepo, cacheRepo, engine, service.GameServiceOptions{
		CreationLockTTL: cfg.Game.CreationLockTTL(),
		ActiveGameTTL:   cfg.Game.ActiveGameTTL(),
	})
	if err != nil {
		log.Printf("Failed to initialize GameService: %v", err)
		os.Exit(1)
	}
	userService := service.NewUserService(userRepo, cacheRepo)
	questionService := service.NewQuestionService(questionRepo, rules)

	// Обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	gameHandler := handler.NewGameHandler(gameService)
	questionHandler := handler.NewQuestionHandler(questionService)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Лимиты запросов работают только с Redis
	noLimit := func(c *gin.Context) { c.Next() }
	var authLimit, gameLimit gin.HandlerFunc = noLimit, noLimit
	if redisClient != nil && cfg.Game.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(redisClient)
		authLimit = limiter.Limit(middleware.StrictAuthRateLimitConfig())
		gameLimit = limiter.LimitByUser(middleware.GameActionRateLimitConfig())
	}

	router := gin.Default()

	// В production не доверяем прокси-заголовкам (защита от IP spoofing)
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultAllowedOrigins
	}
	wsHandler := handler.NewWSHandler(gameService, jwtService, allowedOrigins, websocket.DefaultWatchInterval)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(authLimit)
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Лидерборд (публичный маршрут)
		api.GET("/leaderboard", userHandler.GetLeaderboard)

		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetMe)
			users.GET("/me/games", gameHandler.ListMyGames)
			users.GET("/me/games/export", gameHandler.ExportMyGames)
		}

		games := api.Group("/games")
		games.Use(authMiddleware.RequireAuth())
		{
			games.POST("", gameLimit, gameHandler.CreateGame)
			games.GET("/current", gameHandler.GetCurrentGame)

			gameWithID := games.Group("/:id")
			gameWithID.Use(middleware.ExtractUintParam("id", "gameID"))
			{
				gameWithID.GET("", gameHandler.GetGame)

				actions := gameWithID.Group("")
				actions.Use(gameLimit)
				{
					actions.PUT("/answer", gameHandler.Answer)
					actions.PUT("/take-money", gameHandler.TakeMoney)
					actions.PUT("/help", gameHandler.UseHelp)
					actions.PUT("/timeout", gameHandler.CheckTimeout)
				}
			}
		}

		// Поток состояния игры, токен передается в query
		api.GET("/games/:id/ws", middleware.ExtractUintParam("id", "gameID"), wsHandler.WatchGame)

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.POST("/questions", questionHandler.BulkUpload)
			admin.GET("/questions/stats", questionHandler.GetStats)
		}
	}

	// Контекст запросов отменяется при остановке сервера, вместе с ним закрываются WS-стримы
	baseCtx, stopStreams := context.WithCancel(context.Background())
	defer stopStreams()

	// Тайм-ауты для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopStreams()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
