package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
)

// Config holds the settings shared by the drowsiness binaries.
type Config struct {
	// Detection tunes the EAR smoothing and the alert state machine.
	Detection Detection `yaml:"detection"`
	// Relay configures the alert relay server and its clients.
	Relay Relay `yaml:"relay"`
	// Sound configures the local audible cue.
	Sound Sound `yaml:"sound"`
	// MQTT configures the alert event publisher.
	MQTT MQTT `yaml:"mqtt"`
	// Log configures the global logger.
	Log Log `yaml:"log"`
}

// Detection holds the state machine and smoothing parameters.
type Detection struct {
	// EARThreshold is the smoothed EAR below which eyes count as closed.
	EARThreshold float64 `yaml:"ear_threshold"`
	// ConsecFrames is the consecutive closed-frame gate.
	ConsecFrames int `yaml:"consec_frames"`
	// AssumedFPS derives ConsecFrames from MinClosed when ConsecFrames is zero.
	AssumedFPS float64 `yaml:"assumed_fps"`
	// MinClosed is the closed duration the derived frame gate represents.
	MinClosed time.Duration `yaml:"min_closed"`
	// AlarmDelay is the wall-clock gate applied after the frame gate.
	// Unset means one second; an explicit 0s leaves only the frame gate.
	AlarmDelay *time.Duration `yaml:"alarm_delay,omitempty"`
	// CoolOff mutes new alarms after one ends. Zero disables the mute.
	CoolOff time.Duration `yaml:"cool_off"`
	// SmoothingAlpha is the weight of the newest EAR sample.
	SmoothingAlpha float64 `yaml:"smoothing_alpha"`
	// SmoothingSeed is "zero" or "first_sample".
	SmoothingSeed string `yaml:"smoothing_seed"`
	// WarningLabel is drawn on frames while alarming.
	WarningLabel string `yaml:"warning_label"`
}

// Relay holds the alert relay settings.
type Relay struct {
	// ServerAddress is the gRPC relay address.
	ServerAddress string `yaml:"server_addr"`
	// PushCues makes the monitor forward cues to the relay.
	PushCues bool `yaml:"push_cues"`
	// StateFile is the JSON file storing relayed alerts.
	StateFile string `yaml:"state_file"`
	// RedisAddress switches relay persistence to Redis when set.
	RedisAddress string `yaml:"redis_addr"`
	// RedisPassword authenticates the Redis connection.
	RedisPassword string `yaml:"redis_password"`
	// RedisDB selects the Redis database.
	RedisDB int `yaml:"redis_db"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is how often the watcher polls the relay.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Sound holds the local audible cue settings.
type Sound struct {
	// File is the audio file to play. Empty disables the sound cue.
	File string `yaml:"file"`
	// Command overrides the platform player; the file path is appended.
	Command []string `yaml:"command,omitempty"`
}

// MQTT holds the alert event publisher settings.
type MQTT struct {
	// Broker is the broker URL, e.g. tcp://127.0.0.1:1883. Empty disables MQTT.
	Broker string `yaml:"broker"`
	// Topic receives the cue events.
	Topic string `yaml:"topic"`
	// Username authenticates with the broker.
	Username string `yaml:"username"`
	// Password authenticates with the broker.
	Password string `yaml:"password"`
	// QoS is the publish quality of service (0, 1 or 2).
	QoS byte `yaml:"qos"`
	// Timeout bounds connect and publish operations.
	Timeout time.Duration `yaml:"timeout"`
}

// Log holds the logger settings.
type Log struct {
	// Level is the minimum level ("debug", "info", ...).
	Level string `yaml:"level"`
	// File enables a rotating JSON log file.
	File string `yaml:"file"`
	// MaxSizeMB rotates the file at this size.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays removes rotated files older than this.
	MaxAgeDays int `yaml:"max_age_days"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "drowsiness-settings.yaml"

	// DefaultStateFilename is the default filename for relayed alert JSON.
	DefaultStateFilename = "drowsiness-alerts.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is the default watcher polling interval.
	DefaultPollInterval = 5 * time.Second

	// DefaultMQTTTopic is the default topic for cue events.
	DefaultMQTTTopic = "drowsiness/alerts"

	// DefaultWarningLabel is drawn on frames while alarming.
	DefaultWarningLabel = "DROWSY!"

	// DefaultLogMaxSizeMB is the default rotation size of the log file.
	DefaultLogMaxSizeMB = 100

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// envPrefix prefixes every environment override.
	envPrefix = "DROWSY_"
	// maxQoS is the highest MQTT quality of service.
	maxQoS = 2
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerAddressRequired is returned when relay address is missing.
	errServerAddressRequired = errors.New("relay server address must be provided")
	// errOutOfRange is returned when a numeric setting is outside its domain.
	errOutOfRange = errors.New("value out of range")
)

// Load reads configuration from the provided path, applies environment
// overrides and validates it. A missing file at the default path is not an
// error: the defaults are used instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigFilename:
		// Run on defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	applyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may carry broker and Redis passwords.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills defaults in place.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if err := validateDetection(&settings.Detection); err != nil {
		return fmt.Errorf("detection: %w", err)
	}

	if err := validateRelay(&settings.Relay); err != nil {
		return fmt.Errorf("relay: %w", err)
	}

	if err := validateMQTT(&settings.MQTT); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if settings.Log.Level != "" {
		if _, ok := logger.ParseLogLevel(settings.Log.Level); !ok {
			return fmt.Errorf("log: unknown level %q", settings.Log.Level)
		}
	}

	if settings.Log.File != "" && settings.Log.MaxSizeMB <= 0 {
		settings.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}

	return nil
}

// RequireServerAddress returns an error when the relay address is missing.
func (c *Config) RequireServerAddress() error {
	if c.Relay.ServerAddress == "" {
		return errServerAddressRequired
	}

	return nil
}

// Params converts the detection section into state machine parameters.
func (d *Detection) Params() drowsiness.Params {
	return drowsiness.Params{
		EARThreshold: d.EARThreshold,
		ConsecFrames: d.ConsecFrames,
		AlarmDelay:   d.Delay(),
		CoolOff:      d.CoolOff,
	}
}

// Delay returns the alarm delay, or the default when it is unset.
func (d *Detection) Delay() time.Duration {
	if d.AlarmDelay == nil {
		return drowsiness.DefaultAlarmDelay
	}

	return *d.AlarmDelay
}

// LoggerOptions converts the log section into logger options.
func (l *Log) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      l.Level,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
	}
}

func validateDetection(d *Detection) error {
	if d.EARThreshold < 0 {
		return fmt.Errorf("ear_threshold %v: %w", d.EARThreshold, errOutOfRange)
	}

	if d.EARThreshold == 0 {
		d.EARThreshold = drowsiness.DefaultEARThreshold
	}

	if d.ConsecFrames < 0 || d.AssumedFPS < 0 || d.MinClosed < 0 {
		return fmt.Errorf("frame gate: %w", errOutOfRange)
	}

	// Derive the frame gate from an assumed frame rate if requested.
	if d.ConsecFrames == 0 && d.AssumedFPS > 0 && d.MinClosed > 0 {
		d.ConsecFrames = drowsiness.FramesFor(d.MinClosed, d.AssumedFPS)
	}

	if d.ConsecFrames == 0 {
		d.ConsecFrames = drowsiness.DefaultConsecFrames
	}

	if (d.AlarmDelay != nil && *d.AlarmDelay < 0) || d.CoolOff < 0 {
		return fmt.Errorf("alarm_delay/cool_off: %w", errOutOfRange)
	}

	if d.AlarmDelay == nil {
		delay := drowsiness.DefaultAlarmDelay
		d.AlarmDelay = &delay
	}

	if d.SmoothingAlpha < 0 || d.SmoothingAlpha > 1 {
		return fmt.Errorf("smoothing_alpha %v: %w", d.SmoothingAlpha, errOutOfRange)
	}

	if d.SmoothingAlpha == 0 {
		d.SmoothingAlpha = drowsiness.DefaultAlpha
	}

	if d.SmoothingSeed == "" {
		d.SmoothingSeed = string(drowsiness.SeedZero)
	}

	if !drowsiness.SeedPolicy(d.SmoothingSeed).Valid() {
		return fmt.Errorf("unknown smoothing_seed %q", d.SmoothingSeed)
	}

	if d.WarningLabel == "" {
		d.WarningLabel = DefaultWarningLabel
	}

	return nil
}

func validateRelay(r *Relay) error {
	if r.ServerAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", r.ServerAddress); err != nil {
			return fmt.Errorf("invalid server address: %w", err)
		}
	}

	if r.PushCues && r.ServerAddress == "" {
		return errServerAddressRequired
	}

	// Set default timeout if not specified
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}

	if r.PollInterval <= 0 {
		r.PollInterval = DefaultPollInterval
	}

	// Set default state file if not specified
	if r.StateFile == "" {
		r.StateFile = DefaultStateFilename
	}

	if r.RedisDB < 0 {
		return fmt.Errorf("redis_db %d: %w", r.RedisDB, errOutOfRange)
	}

	return nil
}

func validateMQTT(m *MQTT) error {
	if m.QoS > maxQoS {
		return fmt.Errorf("qos %d: %w", m.QoS, errOutOfRange)
	}

	if m.Broker == "" {
		return nil
	}

	if !strings.Contains(m.Broker, "://") {
		return fmt.Errorf("broker %q must include a scheme such as tcp://", m.Broker)
	}

	if m.Topic == "" {
		m.Topic = DefaultMQTTTopic
	}

	if m.Timeout <= 0 {
		m.Timeout = DefaultTimeout
	}

	return nil
}

// applyEnv overrides selected fields from DROWSY_* variables.
func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"LOG_LEVEL":      &cfg.Log.Level,
		"LOG_FILE":       &cfg.Log.File,
		"SERVER_ADDR":    &cfg.Relay.ServerAddress,
		"REDIS_ADDR":     &cfg.Relay.RedisAddress,
		"REDIS_PASSWORD": &cfg.Relay.RedisPassword,
		"MQTT_BROKER":    &cfg.MQTT.Broker,
		"MQTT_USERNAME":  &cfg.MQTT.Username,
		"MQTT_PASSWORD":  &cfg.MQTT.Password,
		"SOUND_FILE":     &cfg.Sound.File,
	}

	for key, target := range overrides {
		if value, ok := os.LookupEnv(envPrefix + key); ok && value != "" {
			*target = value
		}
	}
}
