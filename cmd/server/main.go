package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/events"
	adminapi "github.com/Nixie-Tech-LLC/billboard/internal/http/api/admin/control/endpoints"
	clientapi "github.com/Nixie-Tech-LLC/billboard/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/billboard/internal/notify"
	"github.com/Nixie-Tech-LLC/billboard/internal/redis"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	env := LoadEnvironment()
	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer db.DB.Close()

	// run pending migrations
	if err := db.RunMigrations(ctx, db.DB, env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(db.DB)
	storageSystem := InitStorage(env)

	// booking announcements; each one is optional
	var announcers []schedule.Announcer
	var displayListeners []adminapi.MainDisplayListener
	var playlists clientapi.PlaylistResolver = schedule.NewResolver(store, storageSystem)

	if env.RedisAddress != "" {
		rdb := redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable; playlist cache disabled")
		} else {
			cache := redis.NewPlaylistCache(rdb, env.PlaylistCacheTTL)
			playlists = cache.Wrap(playlists)
			announcers = append(announcers, cache)
			displayListeners = append(displayListeners, cache)
			log.Info().Dur("ttl", env.PlaylistCacheTTL).Msg("playlist cache enabled")
		}
	}

	var mqttClient mqtt.Client
	if env.MQTTBrokerURL != "" {
		client, err := notify.Connect(env.MQTTBrokerURL, "billboard-server-"+uuid.NewString()[:8])
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable; displays will rely on polling")
		} else {
			mqttClient = client
			notifier := notify.NewNotifier(client)
			defer notifier.Close()
			announcers = append(announcers, notifier)
		}
	}

	if env.AMQPURL != "" {
		amqpConn, err := amqp.Dial(env.AMQPURL)
		if err != nil {
			log.Warn().Err(err).Msg("AMQP unavailable; booking events will not be published")
		} else {
			defer amqpConn.Close()
			publisher, err := events.NewPublisher(amqpConn, events.QueueBookingEvents)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to initialize AMQP producer for " + events.QueueBookingEvents)
			}
			announcers = append(announcers, publisher)
		}
	}

	booker := schedule.NewBooker(store, announcers...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	RegisterRoutes(r, env, store, storageSystem, booker, playlists, displayListeners...)

	srv := &http.Server{
		Addr:              env.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", env.ServerAddress).Bool("mqtt", mqttClient != nil).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}

// requestLogger writes one zerolog line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
