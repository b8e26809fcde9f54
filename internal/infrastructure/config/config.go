package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for hadisco.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Sensors   []SensorConfig  `yaml:"sensors"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig describes the physical device all announced sensors belong to.
// It becomes the shared "device" block of every discovery payload.
type DeviceConfig struct {
	// Identifier is the stable device identifier Home Assistant groups
	// entities by. Required.
	Identifier   string `yaml:"identifier"`
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	SWVersion    string `yaml:"sw_version"`
}

// SensorConfig describes one sensor entity to announce.
type SensorConfig struct {
	// ObjectID is the per-device unique entity identifier used in the
	// discovery topic. Allowed characters: a-z A-Z 0-9 _ -
	ObjectID string `yaml:"object_id"`

	Name        string `yaml:"name"`
	DeviceClass string `yaml:"device_class"`
	StateClass  string `yaml:"state_class"`
	Unit        string `yaml:"unit_of_measurement"`
	Icon        string `yaml:"icon"`

	// ExpireAfter marks the entity unavailable after this many seconds
	// without a state update. 0 disables expiry.
	ExpireAfter int `yaml:"expire_after"`

	// ForceUpdate makes Home Assistant record state updates even when the
	// value is unchanged.
	ForceUpdate bool `yaml:"force_update"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DiscoveryConfig contains Home Assistant discovery settings.
type DiscoveryConfig struct {
	// Prefix is the discovery topic prefix configured in Home Assistant.
	// Default: "homeassistant"
	Prefix string `yaml:"prefix"`

	// NodeID is the node segment of discovery topics. Defaults to the
	// device identifier when empty.
	NodeID string `yaml:"node_id"`

	// Retain controls whether config payloads are published retained.
	// Home Assistant expects retained discovery messages; disable only for
	// debugging against a broker you cannot clean up.
	Retain bool `yaml:"retain"`

	// PayloadReserve is the initial payload buffer capacity in bytes.
	PayloadReserve int `yaml:"payload_reserve"`

	// MaxDepth is the payload builder's nested-object limit.
	MaxDepth int `yaml:"max_depth"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HADISCO_SECTION_KEY
// For example: HADISCO_MQTT_HOST, HADISCO_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDerivedDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hadisco",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Discovery: DiscoveryConfig{
			Prefix:         "homeassistant",
			Retain:         true,
			PayloadReserve: 256,
			MaxDepth:       4,
		},
		Database: DatabaseConfig{
			Path:        "./data/hadisco.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HADISCO_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("HADISCO_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HADISCO_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("HADISCO_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HADISCO_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Discovery
	if v := os.Getenv("HADISCO_DISCOVERY_PREFIX"); v != "" {
		cfg.Discovery.Prefix = v
	}

	// Database
	if v := os.Getenv("HADISCO_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// applyDerivedDefaults fills values whose defaults depend on other fields.
func applyDerivedDefaults(cfg *Config) {
	if cfg.Discovery.NodeID == "" {
		cfg.Discovery.NodeID = cfg.Device.Identifier
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.Identifier == "" {
		errs = append(errs, "device.identifier is required")
	}

	// Sensor validation
	if len(c.Sensors) == 0 {
		errs = append(errs, "at least one sensor is required")
	}
	seen := make(map[string]bool, len(c.Sensors))
	for i, s := range c.Sensors {
		switch {
		case s.ObjectID == "":
			errs = append(errs, fmt.Sprintf("sensors[%d].object_id is required", i))
		case !validTopicSegment(s.ObjectID):
			errs = append(errs, fmt.Sprintf("sensors[%d].object_id %q may only contain letters, digits, underscore and hyphen", i, s.ObjectID))
		case seen[s.ObjectID]:
			errs = append(errs, fmt.Sprintf("sensors[%d].object_id %q is duplicated", i, s.ObjectID))
		}
		seen[s.ObjectID] = true
		if s.ExpireAfter < 0 {
			errs = append(errs, fmt.Sprintf("sensors[%d].expire_after must not be negative", i))
		}
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// Discovery validation
	if c.Discovery.Prefix == "" {
		errs = append(errs, "discovery.prefix is required")
	}
	if c.Discovery.NodeID != "" && !validTopicSegment(c.Discovery.NodeID) {
		errs = append(errs, "discovery.node_id may only contain letters, digits, underscore and hyphen")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validTopicSegment reports whether s is usable as a discovery topic segment.
// Home Assistant accepts [a-zA-Z0-9_-] for node and object IDs.
func validTopicSegment(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return s != ""
}
