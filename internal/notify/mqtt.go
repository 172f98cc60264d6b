package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

// MessagePlaylistChanged tells a display to re-poll its playlist now.
const MessagePlaylistChanged = "playlist_changed"

const publishTimeout = 5 * time.Second

type Command struct {
	Type      string    `json:"type"`
	BookingID uuid.UUID `json:"booking_id"`
}

// Topic is the per-display command topic.
func Topic(displayID uuid.UUID) string {
	return fmt.Sprintf("displays/%s/commands", displayID)
}

// MQTT connection handler
var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("Connected to MQTT broker")
}

// MQTT connection lost handler
var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Connect dials the broker with auto-reconnect enabled.
func Connect(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// Notifier pushes playlist_changed commands to displays whose bookings change.
type Notifier struct {
	client mqtt.Client
}

var _ schedule.Announcer = (*Notifier)(nil)

func NewNotifier(client mqtt.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Announce(_ context.Context, ev schedule.BookingEvent) error {
	return n.SendToDisplay(ev.Booking.DisplayID, Command{Type: MessagePlaylistChanged, BookingID: ev.Booking.ID})
}

// SendToDisplay publishes a command on the display's topic (QoS 1).
func (n *Notifier) SendToDisplay(displayID uuid.UUID, cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	topic := Topic(displayID)
	token := n.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out sending message to display %s", displayID)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to send message to display %s: %w", displayID, err)
	}
	log.Debug().Str("topic", topic).Str("type", cmd.Type).Msg("message sent to display via MQTT")
	return nil
}

// Subscribe calls fn for every playlist_changed command on the display's
// topic. Other command types are ignored.
func Subscribe(client mqtt.Client, displayID uuid.UUID, fn func()) error {
	topic := Topic(displayID)
	token := client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var cmd Command
		if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic()).Msg("ignoring malformed command")
			return
		}
		if cmd.Type == MessagePlaylistChanged {
			fn()
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}
	return nil
}

func (n *Notifier) Close() {
	n.client.Disconnect(250)
	log.Info().Msg("MQTT client disconnected")
}
