// Command player runs on the box behind a display. It polls the playlist
// endpoint and keeps the on-air creative in ASSET_DIR for the viewer.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/config"
	"github.com/Nixie-Tech-LLC/billboard/internal/notify"
	"github.com/Nixie-Tech-LLC/billboard/internal/player"
)

type Environment struct {
	APIBase        string        `env:"API_BASE" default:"http://localhost:8080"`
	DisplayID      string        `env:"DISPLAY_ID"`
	ActivationCode string        `env:"ACTIVATION_CODE"`
	AssetDir       string        `env:"ASSET_DIR" default:"./assets"`
	FallbackName   string        `env:"FALLBACK_NAME" default:"fallback.jpg"`
	PollInterval   time.Duration `env:"POLL_INTERVAL" default:"10s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"30s"`
	MQTTBrokerURL  string        `env:"MQTT_BROKER_URL"`
	Debug          bool          `env:"DEBUG"`
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var env Environment
	if err := config.Load(&env); err != nil {
		log.Fatal().Err(err).Msg("failed to load environment")
	}
	if !env.Debug {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := player.NewClient(env.APIBase, env.RequestTimeout)

	displayID, err := resolveDisplay(ctx, client, env)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot determine display")
	}

	p, err := player.New(player.Config{
		DisplayID:    displayID,
		AssetDir:     env.AssetDir,
		FallbackName: env.FallbackName,
	}, client)
	if err != nil {
		log.Fatal().Err(err).Msg("player init")
	}
	p.OnChange = func(s player.Status) {
		ev := log.Info().Str("state", s.State.String()).Str("path", s.Path)
		if s.Slot != nil {
			ev = ev.Str("slot", s.Slot.ID.String()).Time("ends_at", s.Slot.EndsAt)
		}
		ev.Msg("state changed")
	}

	poller := player.NewPoller(env.PollInterval, p.Tick)

	// push is only a hint to poll early; polling alone stays correct
	if env.MQTTBrokerURL != "" && displayID != nil {
		mqttClient, err := notify.Connect(env.MQTTBrokerURL, "billboard-player-"+displayID.String()[:8])
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable; polling only")
		} else {
			defer mqttClient.Disconnect(250)
			if err := notify.Subscribe(mqttClient, *displayID, poller.Kick); err != nil {
				log.Warn().Err(err).Msg("MQTT subscribe failed; polling only")
			}
		}
	}

	log.Info().Str("api", env.APIBase).Dur("interval", env.PollInterval).Msg("player started")
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("player stopped")
		return
	}
	log.Info().Msg("player stopped")
}

// resolveDisplay returns the configured display, activates one by code, or
// returns nil to follow the main display.
func resolveDisplay(ctx context.Context, client *player.Client, env Environment) (*uuid.UUID, error) {
	if env.DisplayID != "" {
		id, err := uuid.Parse(env.DisplayID)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	if env.ActivationCode != "" {
		id, err := client.Activate(ctx, env.ActivationCode)
		if err != nil {
			return nil, err
		}
		log.Info().Str("display_id", id.String()).Msg("activated")
		return &id, nil
	}
	log.Info().Msg("no display configured; following the main display")
	return nil, nil
}
