package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/poofware/attendance-service/internal/app"
	"github.com/poofware/attendance-service/internal/config"
	"github.com/poofware/attendance-service/internal/controllers"
	"github.com/poofware/attendance-service/internal/middleware"
	"github.com/poofware/attendance-service/internal/repositories"
	"github.com/poofware/attendance-service/internal/routes"
	"github.com/poofware/attendance-service/internal/services"
	"github.com/poofware/attendance-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize attendance-service:", err)
	}
	defer application.Close()

	attRepo := repositories.NewAttendanceRepository(application.DB)
	zoneRepo := repositories.NewZoneRepository(application.DB)
	policyRepo := repositories.NewPolicyRepository(application.DB)

	attendanceService := services.NewAttendanceService(cfg, attRepo, zoneRepo, policyRepo)
	auditService := services.NewAuditService(attRepo)

	attendanceController := controllers.NewAttendanceController(attendanceService)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.AttendanceStatus, attendanceController.StatusHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AttendanceHistory, attendanceController.HistoryHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AttendanceClockIn, attendanceController.ClockInHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AttendanceClockOut, attendanceController.ClockOutHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AttendancePosition, attendanceController.PositionHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AttendanceResync, attendanceController.ResyncHandler).Methods(http.MethodPost)

	c := cron.New()
	_, auditErr := c.AddFunc("15 0 * * *", func() {
		if e := auditService.RunStaleOpenSessionAudit(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Stale open-session audit failed")
		}
	})
	if auditErr != nil {
		utils.Logger.WithError(auditErr).Fatal("Failed to schedule stale-session audit cron")
	}
	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Platform", "X-Device-ID"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("attendance-service failed to start:", err)
	}
}
