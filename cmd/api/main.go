package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/config"
	appointmenthandler "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/handler"
	appointmenth "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/handler/appointment"
	availabilityh "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/handler/availability"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/middleware"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository/postgres"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/router"
	appointmentsvc "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/appointment"
	availabilitysvc "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/availability"
	notificationsvc "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/notification"
	remindersvc "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/reminder"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/logger"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/metrics"
)

func main() {
	log := logger.New(nil)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	loc, err := cfg.Clinic.Location()
	if err != nil {
		log.Fatal(err, "failed to resolve clinic timezone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("scheduling")

	appointmentRepo := postgres.NewAppointmentRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	availabilityRepo := postgres.NewDoctorAvailabilityRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	engine := availabilitysvc.NewEngine(availabilityRepo, appointmentRepo, loc, time.Now)
	slotCache := availabilitysvc.NewCache(engine, cfg.Clinic.SlotCacheTTL, m)

	scheduler := remindersvc.NewScheduler(reminderRepo, log, m, loc, time.Now)
	notifier := notificationsvc.NewService(outboxRepo, loc, time.Now)

	bookingSvc := appointmentsvc.NewService(
		appointmentRepo,
		availabilityRepo,
		slotCache,
		scheduler,
		notifier,
		log,
		m,
		appointmentsvc.Options{
			Location:         loc,
			RescheduleCutoff: cfg.Clinic.RescheduleCutoff,
		},
	)

	r := router.New(
		log,
		appointmenthandler.NewHealth(db),
		availabilityh.NewHandler(slotCache),
		appointmenth.NewHandler(bookingSvc),
		router.Config{
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RequestsPerSecond,
				Burst: cfg.RateLimit.Burst,
			},
			CORS: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(map[string]interface{}{"port": cfg.Server.Port}).Info("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "graceful shutdown failed")
	}
}
