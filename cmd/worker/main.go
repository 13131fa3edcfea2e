package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/config"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/email"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository/postgres"
	remindersvc "github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/reminder"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/worker"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/logger"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/messaging/redis"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/metrics"
)

// workerEnv carries deploy-time overrides for the worker loops.
type workerEnv struct {
	PollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL"`
	BatchSize    int           `envconfig:"WORKER_BATCH_SIZE"`
	HealthAddr   string        `envconfig:"WORKER_HEALTH_ADDR" default:":8081"`
}

func main() {
	log := logger.New(nil)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	var env workerEnv
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal(err, "failed to read worker env")
	}
	if env.PollInterval > 0 {
		cfg.Dispatch.PollInterval = env.PollInterval
	}
	if env.BatchSize > 0 {
		cfg.Dispatch.BatchSize = env.BatchSize
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

	broker, err := redis.NewBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to create redis broker")
	}
	defer broker.Close()

	m := metrics.New("scheduling_worker")

	reminderRepo := postgres.NewReminderRepository(db)
	contactRepo := postgres.NewPatientContactRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	scheduler := remindersvc.NewScheduler(reminderRepo, log, m, loc, time.Now)

	senders := map[model.ReminderChannel]worker.Sender{
		model.ReminderChannelEmail: worker.NewEmailSender(email.NewService(cfg.SMTP)),
		model.ReminderChannelSMS:   worker.NewLogSender(model.ReminderChannelSMS, log),
		model.ReminderChannelPush:  worker.NewLogSender(model.ReminderChannelPush, log),
	}

	dispatcher := worker.NewDispatcher(scheduler, contactRepo, senders, worker.DispatcherConfig{
		PollInterval:  cfg.Dispatch.PollInterval,
		BatchSize:     cfg.Dispatch.BatchSize,
		RetryAttempts: cfg.Dispatch.RetryAttempts,
		RetryDelay:    cfg.Dispatch.RetryDelay,
	}, log, m, time.Now)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Dispatch.BatchSize,
		PollInterval:  cfg.Dispatch.PollInterval,
		RetryAttempts: cfg.Dispatch.RetryAttempts,
		RetryDelay:    cfg.Dispatch.RetryDelay,
	}, log, m)

	startHealthServer(env.HealthAddr, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down worker")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatcher.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	wg.Wait()
}

func startHealthServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error(err, "health server failed")
		}
	}()
}
