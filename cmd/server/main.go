package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recruitops/config"
	"recruitops/internal/api"
	"recruitops/internal/calendar"
	"recruitops/internal/db"
	"recruitops/internal/mq"
	"recruitops/internal/mqhandler"
	"recruitops/internal/redisclient"
	"recruitops/internal/repository"
	"recruitops/internal/service"
	"recruitops/pkg/logger"
	"recruitops/pkg/util"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	zlog := logger.NewLogger()
	defer zlog.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, zlog)
	if err != nil {
		zlog.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Repositories
	holidayRepo := repository.NewHolidayRepository(dbConn)
	processRepo := repository.NewProcessRepository(dbConn)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, zlog)

	// 4. Holiday directory + business calendar. A failed initial load is
	// not fatal: the calendar degrades to weekends-only until the ticker
	// catches up.
	directory := calendar.NewDirectory(holidayRepo, zlog)
	if err := directory.Refresh(context.Background()); err != nil {
		zlog.Warn("Initial holiday load failed, starting weekends-only", zap.Error(err))
	}
	go directory.Run(context.Background(), time.Duration(cfg.Calendar.RefreshMinutes)*time.Minute)

	cal := calendar.New(directory)

	// 5. Redis deduper for event redeliveries
	rdb := redisclient.New(cfg.Redis)
	deduper := util.NewDeduper(rdb, 24*time.Hour, zlog)

	// 6. Services
	builder := service.NewPlanBuilder(milestoneRepo, cal, zlog)
	dispatcher := service.NewDispatcher(milestoneRepo, processRepo, cal, zlog)
	alerts := service.NewAlertService(milestoneRepo, cal, zlog)

	// 7. Dead letter exchange for poison messages
	deadLetterer, err := mq.NewDeadLetterer(cfg.MQ.URL, zlog)
	if err != nil {
		zlog.Fatal("DLQ initialization failed", zap.Error(err))
	}
	defer deadLetterer.Close()

	// 8. One consumer per collaborator event
	handlers := map[string]mq.MessageHandler{
		mq.KeyProcessCreated:      mqhandler.NewProcessCreatedHandler(builder, deduper, zlog).Handle,
		mq.KeyPublicationRecorded: mqhandler.NewPublicationRecordedHandler(dispatcher, deduper, zlog).Handle,
		mq.KeyStageAdvanced:       mqhandler.NewStageAdvancedHandler(dispatcher, deduper, zlog).Handle,
		mq.KeyInterviewScheduled:  mqhandler.NewInterviewScheduledHandler(dispatcher, deduper, zlog).Handle,
		mq.KeyTestScheduled:       mqhandler.NewTestScheduledHandler(dispatcher, deduper, zlog).Handle,
		mq.KeyProcessClosed:       mqhandler.NewProcessClosedHandler(dispatcher, deduper, zlog).Handle,
	}

	for routingKey, handler := range handlers {
		if err := deadLetterer.Bind(routingKey); err != nil {
			log.Fatalf("failed to bind DLQ for %s: %v", routingKey, err)
		}

		consumer, err := mq.NewConsumer(cfg.MQ.URL, routingKey+".milestones.q", routingKey, zlog)
		if err != nil {
			log.Fatalf("failed to init consumer for %s: %v", routingKey, err)
		}
		defer consumer.Close()
		consumer.SetHandler(handler)
		consumer.SetDeadLetterer(deadLetterer)

		go func(key string, c *mq.Consumer) {
			if err := c.StartConsuming(); err != nil {
				zlog.Fatal("consumer start failed",
					zap.String("routing_key", key),
					zap.Error(err),
				)
			}
		}(routingKey, consumer)
	}

	// 9. HTTP: metrics plus the read-only alert views
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	api.NewAlertQueryHandler(alerts, zlog).Register(mux)

	zlog.Info("Milestone engine ready",
		zap.String("http_port", cfg.Server.MetricsPort),
	)
	if err := http.ListenAndServe(":"+cfg.Server.MetricsPort, mux); err != nil {
		zlog.Fatal("http server failed", zap.Error(err))
	}
}
