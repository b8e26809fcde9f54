// hadisco - Home Assistant MQTT Discovery announcer
//
// hadisco reads a device and sensor manifest from YAML, publishes one retained
// MQTT Discovery config payload per sensor, and keeps the announcements in
// step with the manifest: changed payloads are republished, removed sensors
// are un-announced, and a Home Assistant restart triggers a full re-announce.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/verdantio/hadisco/migrations"

	"github.com/verdantio/hadisco/internal/discovery"
	"github.com/verdantio/hadisco/internal/infrastructure/config"
	"github.com/verdantio/hadisco/internal/infrastructure/database"
	"github.com/verdantio/hadisco/internal/infrastructure/logging"
	"github.com/verdantio/hadisco/internal/infrastructure/mqtt"
	"github.com/verdantio/hadisco/internal/provision"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting hadisco",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "sensors", len(cfg.Sensors))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Provisioning registry keeps unique_ids stable across restarts
	store := provision.NewSQLiteRepository(db.DB)

	topics := discovery.Topics{
		Prefix: cfg.Discovery.Prefix,
		NodeID: cfg.Discovery.NodeID,
	}

	// Connect to MQTT broker. The availability topic doubles as the LWT
	// target, so a crash marks every announced entity unavailable.
	mqttClient, err := mqtt.Connect(cfg.MQTT, topics.Availability())
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Build the announcer from the manifest
	announcer := discovery.NewAnnouncer(announcerConfig(cfg, topics), mqttClient, store)
	announcer.SetLogger(log)

	if err := announcer.AnnounceAll(ctx); err != nil {
		return fmt.Errorf("announcing sensors: %w", err)
	}
	log.Info("discovery announcements published", "sensors", len(cfg.Sensors))

	// Re-announce whenever Home Assistant restarts
	statusTopic := topics.Status()
	if err := mqttClient.Subscribe(statusTopic, byte(cfg.MQTT.QoS), announcer.StatusHandler(ctx)); err != nil {
		return fmt.Errorf("subscribing to %s: %w", statusTopic, err)
	}
	log.Info("watching Home Assistant status", "topic", statusTopic)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: MQTT first (publishing the
	// retained offline payload), then the database.

	log.Info("hadisco stopped")
	return nil
}

// announcerConfig maps the loaded configuration onto the announcer's types.
func announcerConfig(cfg *config.Config, topics discovery.Topics) discovery.Config {
	sensors := make([]discovery.Sensor, 0, len(cfg.Sensors))
	for _, s := range cfg.Sensors {
		sensors = append(sensors, discovery.Sensor{
			ObjectID:    s.ObjectID,
			Name:        s.Name,
			DeviceClass: s.DeviceClass,
			StateClass:  s.StateClass,
			Unit:        s.Unit,
			Icon:        s.Icon,
			ExpireAfter: s.ExpireAfter,
			ForceUpdate: s.ForceUpdate,
		})
	}

	return discovery.Config{
		Device: discovery.Device{
			Identifier:   cfg.Device.Identifier,
			Name:         cfg.Device.Name,
			Manufacturer: cfg.Device.Manufacturer,
			Model:        cfg.Device.Model,
			SWVersion:    cfg.Device.SWVersion,
		},
		Sensors:        sensors,
		Topics:         topics,
		QoS:            byte(cfg.MQTT.QoS),
		Retain:         cfg.Discovery.Retain,
		PayloadReserve: cfg.Discovery.PayloadReserve,
		MaxDepth:       cfg.Discovery.MaxDepth,
	}
}

// getConfigPath returns the configuration file path.
// Uses HADISCO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HADISCO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
