package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nhom11/attendance-api/api/swagger"
	"github.com/nhom11/attendance-api/internal/handler"
	"github.com/nhom11/attendance-api/internal/middleware"
	"github.com/nhom11/attendance-api/internal/models"
	"github.com/nhom11/attendance-api/internal/repository"
	"github.com/nhom11/attendance-api/internal/service"
	"github.com/nhom11/attendance-api/pkg/cache"
	"github.com/nhom11/attendance-api/pkg/clock"
	"github.com/nhom11/attendance-api/pkg/config"
	"github.com/nhom11/attendance-api/pkg/database"
	"github.com/nhom11/attendance-api/pkg/jobs"
	"github.com/nhom11/attendance-api/pkg/logger"
	corsmiddleware "github.com/nhom11/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nhom11/attendance-api/pkg/middleware/requestid"
)

// @title Attendance API
// @version 1.0.0
// @description Single-institution attendance tracking service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	now := clock.System()
	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classSubjectRepo := repository.NewClassSubjectRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, report cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	// Services.
	authService := service.NewAuthService(userRepo, resetRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "attendance-api",
		ResetTokenLength:   cfg.Reset.TokenLength,
		ResetTokenTTL:      cfg.Reset.TokenTTL,
	}, now)
	userService := service.NewUserService(userRepo, validate, logr, now)
	profileService := service.NewProfileService(teacherRepo, studentRepo, logr)
	classService := service.NewClassService(classRepo, validate, logr)
	subjectService := service.NewSubjectService(subjectRepo, validate, logr)
	classSubjectService := service.NewClassSubjectService(classSubjectRepo, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, validate, logr, now)
	metricsService := service.NewMetricsService()
	sessionService := service.NewSessionService(sessionRepo, validate, logr, now).WithMetrics(metricsService)
	attendanceService := service.NewAttendanceService(attendanceRepo, sessionRepo, enrollmentRepo, validate, logr, now).WithMetrics(metricsService)
	reportService := service.NewReportService(reportRepo, cacheRepo, logr, cfg.Reports.CacheTTL).WithMetrics(metricsService)

	// Reports only count CLOSED sessions, so every close makes cached
	// aggregates stale. Invalidation runs off the request path.
	invalidateQueue := jobs.NewQueue("report-cache", func(ctx context.Context, _ jobs.Job) error {
		return reportService.Invalidate(ctx)
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	invalidateQueue.Start(context.Background())
	defer invalidateQueue.Stop()
	sessionService.OnClosed(func(context.Context) {
		if err := invalidateQueue.Enqueue(jobs.Job{Type: "invalidate-school-report"}); err != nil {
			logr.Sugar().Warnw("failed to enqueue report invalidation", "error", err)
		}
	})

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(profileService, classSubjectService)
	classHandler := handler.NewClassHandler(classService, enrollmentService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	classSubjectHandler := handler.NewClassSubjectHandler(classSubjectService, sessionService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	sessionHandler := handler.NewSessionHandler(sessionService, profileService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, profileService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/password-reset", authHandler.RequestPasswordReset)
		auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)

		authed := auth.Group("", middleware.JWT(authService))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
	}

	protected := api.Group("", middleware.JWT(authService))

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent)

	users := protected.Group("/users")
	{
		users.GET("", admin, userHandler.List)
		users.POST("", admin, userHandler.Create)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.SelfMarker), userHandler.Get)
		users.PUT("/:id", admin, userHandler.Update)
		users.POST("/:id/deactivate", admin, userHandler.Deactivate)
		users.DELETE("/:id", admin, userHandler.Delete)
	}

	teachers := protected.Group("/teachers")
	{
		teachers.GET("", staff, profileHandler.ListTeachers)
		teachers.GET("/me/assignments", middleware.RequireRoles(models.RoleTeacher), profileHandler.MyAssignments)
		teachers.GET("/:id", staff, profileHandler.GetTeacher)
	}

	students := protected.Group("/students")
	{
		students.GET("/:id", staff, profileHandler.GetStudent)
		students.PUT("/:id/note", staff, profileHandler.UpdateStudentNote)
		students.GET("/:id/enrollments", staff, enrollmentHandler.ListForStudent)
		students.GET("/:id/attendance", staff, attendanceHandler.StudentHistory)
	}

	classes := protected.Group("/classes")
	{
		classes.GET("", anyRole, classHandler.List)
		classes.POST("", admin, classHandler.Create)
		classes.GET("/:id", anyRole, classHandler.Get)
		classes.PUT("/:id", admin, classHandler.Update)
		classes.DELETE("/:id", admin, classHandler.Delete)
		classes.GET("/:id/students", staff, classHandler.Students)
		classes.GET("/:id/subjects", anyRole, classSubjectHandler.ListForClass)
		classes.GET("/:id/enrollments", staff, enrollmentHandler.ListForClass)
	}

	subjects := protected.Group("/subjects")
	{
		subjects.GET("", anyRole, subjectHandler.List)
		subjects.POST("", admin, subjectHandler.Create)
		subjects.GET("/:id", anyRole, subjectHandler.Get)
		subjects.DELETE("/:id", admin, subjectHandler.Delete)
	}

	classSubjects := protected.Group("/class-subjects")
	{
		classSubjects.POST("", admin, classSubjectHandler.Assign)
		classSubjects.GET("/:id", staff, classSubjectHandler.Get)
		classSubjects.DELETE("/:id", admin, classSubjectHandler.Remove)
		classSubjects.GET("/:id/sessions", staff, classSubjectHandler.Sessions)
		classSubjects.GET("/:id/sessions/active", staff, classSubjectHandler.ActiveSession)
	}

	enrollments := protected.Group("/enrollments")
	{
		enrollments.POST("", admin, enrollmentHandler.Enroll)
		enrollments.DELETE("/:id", admin, enrollmentHandler.Cancel)
	}

	sessions := protected.Group("/sessions")
	{
		sessions.POST("", middleware.RequireRoles(models.RoleTeacher), sessionHandler.Open)
		sessions.GET("/active", middleware.RequireRoles(models.RoleStudent), sessionHandler.ActiveForMe)
		sessions.GET("/:id", staff, sessionHandler.Get)
		sessions.POST("/:id/close", middleware.RequireRoles(models.RoleTeacher), sessionHandler.Close)
		sessions.GET("/:id/records", staff, attendanceHandler.SessionRecords)
		sessions.POST("/:id/records", middleware.RequireRoles(models.RoleTeacher), attendanceHandler.Mark)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.POST("/self", middleware.RequireRoles(models.RoleStudent), attendanceHandler.SelfMark)
		attendance.GET("/history", middleware.RequireRoles(models.RoleStudent), attendanceHandler.MyHistory)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/school", staff, reportHandler.School)
		reports.GET("/school/export/csv", staff, reportHandler.ExportCSV)
		reports.GET("/school/export/pdf", staff, reportHandler.ExportPDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
