package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/departure-sensor/config"
	"github.com/theoremus-urban-solutions/departure-sensor/internal/logging"
	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
	"github.com/theoremus-urban-solutions/departure-sensor/publish"
	"github.com/theoremus-urban-solutions/departure-sensor/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	configPath := flag.String("config", os.Getenv("DEPARTURE_SENSOR_CONFIG"), "path to config.yml (default: search config.yml, ./config/config.yml)")
	mode := flag.String("mode", "serve", "oneshot|serve")
	flag.Parse()

	logging.InitLogging()
	defer logging.Sync()
	logger := logging.Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalw("failed to load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Cache)
	if err != nil {
		logger.Fatalw("failed to open cache", "backend", cfg.Cache.Backend, "error", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warnw("error closing cache", "error", err)
		}
	}()

	src := newSource(cfg.Feed.URL, cfg.Feed.Format, cfg.Timeout(), cfg.FeedLocation())
	sensor := monitor.NewSensor(
		monitor.Settings{
			StopID:     cfg.Sensor.StopID,
			Horizon:    cfg.Horizon(),
			Location:   cfg.Location(),
			StaleAfter: cfg.StaleAfter(),
		},
		monitor.Query{
			Destinations: cfg.Sensor.Destinations,
			MinLead:      cfg.MinLead(),
			Index:        cfg.Sensor.Index,
		},
		src,
		store,
		logging.NewEventLogger(logger, cfg.Sensor.Name),
	)
	logger.Infow("Sensor configured",
		"name", cfg.Sensor.Name,
		"stop", cfg.Sensor.StopID,
		"source", describeSource(src),
		"cache", cfg.Cache.Backend,
	)

	switch *mode {
	case "oneshot":
		if err := oneshot(ctx, cfg, sensor); err != nil {
			logger.Fatalw("oneshot failed", "error", err)
		}
	case "serve":
		serve(ctx, cfg, sensor, logger)
	default:
		logger.Fatalw("unknown mode", "mode", *mode)
	}
}

func oneshot(ctx context.Context, cfg *config.AppConfig, sensor *monitor.Sensor) error {
	r, err := sensor.Poll(ctx, time.Now())
	if err != nil {
		return err
	}
	buf, err := json.MarshalIndent(server.NewDepartureResponse(cfg.Sensor.Name, r), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func serve(ctx context.Context, cfg *config.AppConfig, sensor *monitor.Sensor, logger *zap.SugaredLogger) {
	latest := &server.Latest{}
	sinks := []func(context.Context, monitor.Reading){
		func(_ context.Context, r monitor.Reading) { latest.Set(r) },
		func(_ context.Context, r monitor.Reading) {
			logger.Debugw("Tick", "tick", r.TickID, "state", r.State(), "source", r.Source.String(), "diagnostic", r.Diagnostic.String())
		},
	}

	if cfg.Publish.AMQPURL != "" {
		conn, ch, err := publish.Dial(cfg.Publish.AMQPURL)
		if err != nil {
			logger.Fatalw("failed to connect to RabbitMQ", "error", err)
		}
		defer conn.Close()
		defer ch.Close()

		pub, err := publish.NewPublisher(ch, cfg.Publish.Queue, cfg.Sensor.Name)
		if err != nil {
			logger.Fatalw("failed to declare queue", "queue", cfg.Publish.Queue, "error", err)
		}
		sinks = append(sinks, func(ctx context.Context, r monitor.Reading) {
			if err := pub.Publish(ctx, r); err != nil {
				logger.Warnw("error publishing reading to RabbitMQ", "queue", cfg.Publish.Queue, "error", err)
			}
		})
	}

	srv := server.New(cfg.Sensor.Name, cfg.Server.Port, latest, logger)
	errc := make(chan error, 1)
	srv.Start(errc)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		runLoop(loopCtx, sensor, cfg.Interval(), time.Now, sinks...)
	}()

	select {
	case <-ctx.Done():
		logger.Infow("Shutdown signal received")
	case err := <-errc:
		logger.Errorw("Server failed", "error", err)
	}
	cancel()
	<-done

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("server shutdown error", "error", err)
	}
}
