package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
)

// Event types published on the topic.
const (
	EventAlertStarted = "alert_started"
	EventAlertStopped = "alert_stopped"
)

const (
	// clientIDPrefix prefixes the random client identifier.
	clientIDPrefix = "drowsy-monitor-"
	// disconnectQuiesce is how long Close waits for in-flight work, in milliseconds.
	disconnectQuiesce = 250
	keepAlive         = 30 * time.Second
)

var (
	// errTimeout is returned when the broker does not answer in time.
	errTimeout = errors.New("mqtt operation timed out")
	// errBrokerRequired is returned when no broker URL is configured.
	errBrokerRequired = errors.New("broker must be provided")

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Options configures the publisher.
type Options struct {
	Broker   string
	Topic    string
	Username string
	Password string
	QoS      byte
	// Timeout bounds connect and publish.
	Timeout time.Duration
	// Hostname is attached to every event.
	Hostname string
}

// Event is the JSON payload of one cue command.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	SubjectID   string    `json:"subject_id"`
	SmoothedEAR float64   `json:"ear"`
	At          time.Time `json:"at"`
	Hostname    string    `json:"hostname,omitempty"`
}

// client is the subset of the paho client used by the publisher.
type client interface {
	Publish(topic string, qos byte, retained bool, payload any) paho.Token
	Disconnect(quiesce uint)
}

// Publisher is an actuator that publishes cue events.
type Publisher struct {
	client client
	opts   Options
	// newID generates event identifiers.
	newID func() string
}

// Connect dials the broker and returns a publisher.
func Connect(ctx context.Context, opts *Options) (*Publisher, error) {
	if opts.Broker == "" {
		return nil, errBrokerRequired
	}

	clientID := clientIDPrefix + uuid.NewString()

	clientOptions := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(clientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(keepAlive).
		SetConnectTimeout(opts.Timeout).
		SetAutoReconnect(true)

	clientOptions.OnConnectionLost = func(_ paho.Client, err error) {
		logger.WarnKV(ctx, "MQTT connection lost", "broker", opts.Broker, "error", err)
	}

	mqttClient := paho.NewClient(clientOptions)

	logger.InfoKV(ctx, "Connecting to MQTT", "broker", opts.Broker, "client_id", clientID)

	if err := wait(mqttClient.Connect(), opts.Timeout); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Broker, err)
	}

	return newPublisher(mqttClient, opts), nil
}

func newPublisher(c client, opts *Options) *Publisher {
	return &Publisher{
		client: c,
		opts:   *opts,
		newID:  uuid.NewString,
	}
}

// StartCue publishes an alert_started event.
func (p *Publisher) StartCue(ctx context.Context, cue drowsiness.Cue) error {
	return p.publish(ctx, EventAlertStarted, cue)
}

// StopCue publishes an alert_stopped event.
func (p *Publisher) StopCue(ctx context.Context, cue drowsiness.Cue) error {
	return p.publish(ctx, EventAlertStopped, cue)
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(disconnectQuiesce)
}

func (p *Publisher) publish(ctx context.Context, eventType string, cue drowsiness.Cue) error {
	event := Event{
		ID:          p.newID(),
		Type:        eventType,
		SubjectID:   cue.SubjectID,
		SmoothedEAR: cue.SmoothedEAR,
		At:          cue.At,
		Hostname:    p.opts.Hostname,
	}

	payload, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err = wait(p.client.Publish(p.opts.Topic, p.opts.QoS, false, payload), p.opts.Timeout); err != nil {
		return fmt.Errorf("publish to %s: %w", p.opts.Topic, err)
	}

	logger.DebugKV(ctx, "Cue event published", "topic", p.opts.Topic, "type", eventType, "event_id", event.ID)

	return nil
}

// wait blocks on the token for at most timeout; zero waits forever.
func wait(token paho.Token, timeout time.Duration) error {
	if timeout <= 0 {
		token.Wait()
	} else if !token.WaitTimeout(timeout) {
		return errTimeout
	}

	return token.Error()
}
