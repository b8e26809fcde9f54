package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
device:
  identifier: "plantsense-01"
  name: "Plant Sensor"
  model: "v1.0"
sensors:
  - object_id: "soil_moisture"
    name: "Soil Moisture"
    device_class: "moisture"
    unit_of_measurement: "%"
  - object_id: "battery"
    name: "Plant Battery"
    device_class: "battery"
    unit_of_measurement: "%"
    expire_after: 7200
mqtt:
  broker:
    host: "mqtt.local"
    port: 1883
    client_id: "plantsense"
  qos: 1
database:
  path: "/tmp/hadisco-test.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Identifier != "plantsense-01" {
		t.Errorf("Device.Identifier = %q, want %q", cfg.Device.Identifier, "plantsense-01")
	}
	if len(cfg.Sensors) != 2 {
		t.Fatalf("len(Sensors) = %d, want 2", len(cfg.Sensors))
	}
	if cfg.Sensors[1].ExpireAfter != 7200 {
		t.Errorf("Sensors[1].ExpireAfter = %d, want 7200", cfg.Sensors[1].ExpireAfter)
	}
	if cfg.MQTT.Broker.Host != "mqtt.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.local")
	}

	// Defaults applied where the file is silent.
	if cfg.Discovery.Prefix != "homeassistant" {
		t.Errorf("Discovery.Prefix = %q, want default %q", cfg.Discovery.Prefix, "homeassistant")
	}
	if !cfg.Discovery.Retain {
		t.Error("Discovery.Retain = false, want default true")
	}
	// NodeID derives from the device identifier when unset.
	if cfg.Discovery.NodeID != "plantsense-01" {
		t.Errorf("Discovery.NodeID = %q, want %q", cfg.Discovery.NodeID, "plantsense-01")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
device:
  identifier: "plantsense-01"
sensors:
  - object_id: "soil_moisture"
mqtt:
  broker:
    host: "config-host"
`
	t.Setenv("HADISCO_MQTT_HOST", "env-host")
	t.Setenv("HADISCO_MQTT_PASSWORD", "env-secret")
	t.Setenv("HADISCO_DISCOVERY_PREFIX", "ha-test")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-host" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "env-host")
	}
	if cfg.MQTT.Auth.Password != "env-secret" {
		t.Errorf("MQTT.Auth.Password = %q, want env override", cfg.MQTT.Auth.Password)
	}
	if cfg.Discovery.Prefix != "ha-test" {
		t.Errorf("Discovery.Prefix = %q, want env override %q", cfg.Discovery.Prefix, "ha-test")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Device.Identifier = "plantsense-01"
		cfg.Sensors = []SensorConfig{{ObjectID: "soil_moisture"}}
		applyDerivedDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing device identifier",
			mutate:  func(cfg *Config) { cfg.Device.Identifier = "" },
			wantErr: true,
		},
		{
			name:    "no sensors",
			mutate:  func(cfg *Config) { cfg.Sensors = nil },
			wantErr: true,
		},
		{
			name: "duplicate object_id",
			mutate: func(cfg *Config) {
				cfg.Sensors = append(cfg.Sensors, SensorConfig{ObjectID: "soil_moisture"})
			},
			wantErr: true,
		},
		{
			name: "object_id with topic separators",
			mutate: func(cfg *Config) {
				cfg.Sensors[0].ObjectID = "soil/moisture"
			},
			wantErr: true,
		},
		{
			name: "negative expire_after",
			mutate: func(cfg *Config) {
				cfg.Sensors[0].ExpireAfter = -1
			},
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(cfg *Config) { cfg.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid broker port",
			mutate:  func(cfg *Config) { cfg.MQTT.Broker.Port = 0 },
			wantErr: true,
		},
		{
			name:    "empty discovery prefix",
			mutate:  func(cfg *Config) { cfg.Discovery.Prefix = "" },
			wantErr: true,
		},
		{
			name:    "empty database path",
			mutate:  func(cfg *Config) { cfg.Database.Path = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
