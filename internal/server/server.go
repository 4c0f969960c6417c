package server

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"attendtrack/api/internal/config"
	"attendtrack/api/internal/handler"
	"attendtrack/api/internal/middleware"
	"attendtrack/api/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	config    *config.Config
	db        *gorm.DB
	redis     *redis.Client
	nats      *nats.Conn
	wsHub     *handler.WSHub
	wsHandler *handler.WSHandler
	faceRec   *service.FaceRecClient
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) *Server {
	return &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		nats:   natsConn,
	}
}

// Setup initializes routes and handlers
func (s *Server) Setup() {
	s.wsHub = handler.NewWSHub(s.nats)
	s.wsHandler = handler.NewWSHandler(s.wsHub)

	// Initialize services
	files := service.NewFileStore(s.config.UploadDir)
	tokenService := service.NewTokenService(s.config.JWTSecret, s.config.TokenTTL, s.redis, s.config.TokenCacheTTL)

	var guard *service.LoginGuard
	if s.config.LoginLimit.Enabled {
		guard = service.NewLoginGuard(s.redis, s.config.LoginLimit.MaxFailures, s.config.LoginLimit.Window)
	}
	authService := service.NewAuthService(s.db, tokenService, guard, s.config)

	referenceService := service.NewReferenceService(s.db)
	if s.config.FaceRec.Enabled {
		s.faceRec = service.NewFaceRecClient(s.config.FaceRec)
	}
	employeeService := service.NewEmployeeService(s.db, files, referenceService, s.faceRec)
	attendanceService := service.NewAttendanceService(s.db, files, s.config.OfficeStart, s.config.OfficeEnd)
	locationService := service.NewLocationService(s.db, s.redis)
	leaveService := service.NewLeaveService(s.db, files)
	reportService := service.NewReportService(attendanceService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, tokenService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	locationHandler := handler.NewLocationHandler(locationService)
	leaveHandler := handler.NewLeaveHandler(leaveService)
	referenceHandler := handler.NewReferenceHandler(referenceService)
	reportHandler := handler.NewReportHandler(reportService)

	// Start WebSocket hub in background
	go s.wsHub.Run()
	log.Println("[Server] WebSocket hub started")

	// Setup Gin router
	s.router = gin.Default()

	// CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Bearer tokens are decoded for every request; routes below decide
	// whether an anonymous caller is acceptable.
	s.router.Use(middleware.BearerAuth(tokenService))

	// Swagger UI
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// WebSocket routes - public, dashboards may connect before login
	s.router.GET("/ws/location", s.wsHandler.HandleLocation)
	s.router.GET("/ws/stats", s.wsHandler.GetStats)

	// Open routes: auth, web token validation and static data
	api := s.router.Group("/api/v1")
	{
		api.POST("/auth/signup", authHandler.Signup)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/validate", authHandler.Validate)
		api.POST("/web/validate-token", authHandler.ValidateToken)

		data := api.Group("/data")
		{
			data.GET("/districts", referenceHandler.Districts)
			data.GET("/tehsils", referenceHandler.Tehsils)
			data.GET("/offices", referenceHandler.OfficeNames)
			data.GET("/work-types", referenceHandler.WorkTypes)
			data.GET("/holidays", referenceHandler.Holidays)
			data.GET("/office-time", referenceHandler.OfficeTime)

			data.POST("/employees", employeeHandler.Create)
			data.GET("/employees", employeeHandler.List)
			data.GET("/employees/check", employeeHandler.CheckIdentityCard)
			data.GET("/employees/:id", employeeHandler.Get)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.GetMe)

		// Attendance
		protected.POST("/attendance/punch", attendanceHandler.Punch)
		protected.GET("/attendance/today", attendanceHandler.Today)
		protected.GET("/attendance/history", attendanceHandler.History)

		// Locations
		protected.POST("/locations", locationHandler.Record)
		protected.GET("/locations/latest", locationHandler.GetAllLatest)
		protected.GET("/locations/:username/latest", locationHandler.GetLatest)
		protected.GET("/locations/:username/history", locationHandler.GetHistory)

		// Leave & extra work
		protected.POST("/leaves", leaveHandler.CreateLeave)
		protected.GET("/leaves", leaveHandler.ListLeaves)
		protected.GET("/leaves/all", leaveHandler.ListAllLeaves)
		protected.POST("/extra-work", leaveHandler.CreateExtraWork)
		protected.GET("/extra-work", leaveHandler.ListExtraWork)

		// Reports
		protected.GET("/reports/attendance", reportHandler.MonthlyAttendance)
	}
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	log.Printf("[Server] HTTP server listening on %s", addr)
	return s.router.Run(addr)
}

// GetRouter returns the gin router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() {
	if s.wsHub != nil {
		s.wsHub.Stop()
		log.Println("[Server] WebSocket hub stopped")
	}
	if s.faceRec != nil {
		s.faceRec.Close()
		log.Println("[Server] Face recognition client stopped")
	}
}
