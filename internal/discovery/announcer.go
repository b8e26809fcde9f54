package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verdantio/hadisco/internal/payload"
	"github.com/verdantio/hadisco/internal/provision"
)

// Publisher is the transport the announcer publishes through.
// Satisfied by mqtt.Client; tests supply a fake.
type Publisher interface {
	PublishString(topic string, payload string, qos byte, retained bool) error
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config carries the announcer's construction parameters.
type Config struct {
	Device  Device
	Sensors []Sensor
	Topics  Topics

	// QoS for config payload publishes.
	QoS byte

	// Retain controls whether config payloads are published retained.
	Retain bool

	// PayloadReserve and MaxDepth are handed to the payload builder.
	PayloadReserve int
	MaxDepth       int
}

// Announcer publishes one discovery config payload per sensor, reusing the
// serialised device block across sensors via the payload builder's checkpoint.
//
// Thread Safety:
//   - Not safe for concurrent use; the builder is single-caller by design.
//     AnnounceAll and StatusHandler invocations must be serialised (the main
//     loop and paho's single-handler dispatch already guarantee this).
type Announcer struct {
	cfg     Config
	pub     Publisher
	store   provision.Repository
	builder *payload.Builder
	logger  Logger

	// newUniqueID mints unique_ids for first-seen sensors. Overridable in tests.
	newUniqueID func() string

	// now is the clock for registry timestamps. Overridable in tests.
	now func() time.Time
}

// NewAnnouncer creates an Announcer.
//
// Parameters:
//   - cfg: Device, sensor manifest and publish settings
//   - pub: Transport for publishes (typically mqtt.Client)
//   - store: Provisioning registry for unique_id stability and cleanup
func NewAnnouncer(cfg Config, pub Publisher, store provision.Repository) *Announcer {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = payload.DefaultMaxDepth
	}
	return &Announcer{
		cfg:         cfg,
		pub:         pub,
		store:       store,
		builder:     payload.New(cfg.PayloadReserve, cfg.MaxDepth),
		newUniqueID: uuid.NewString,
		now:         time.Now,
	}
}

// SetLogger sets a logger for announce/cleanup progress and errors.
// If not set, the announcer is silent.
func (a *Announcer) SetLogger(logger Logger) {
	a.logger = logger
}

// AnnounceAll publishes a config payload for every sensor in the manifest and
// un-announces registry entities no longer present in it.
//
// Payloads identical to the last announced version are skipped; use
// StatusHandler's forced re-announce path for Home Assistant restarts.
//
// Returns:
//   - error: First failure encountered; earlier successful announcements stand
func (a *Announcer) AnnounceAll(ctx context.Context) error {
	return a.announceAll(ctx, false)
}

func (a *Announcer) announceAll(ctx context.Context, force bool) error {
	a.beginSession()

	for _, sensor := range a.cfg.Sensors {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.announceSensor(ctx, sensor, force); err != nil {
			return err
		}
	}

	return a.cleanupRemoved(ctx)
}

// beginSession resets the builder and serialises the device block once.
// Every sensor payload in the session reuses it through the checkpoint.
func (a *Announcer) beginSession() {
	dev := a.cfg.Device

	a.builder.Clear()
	a.builder.BeginDevice().
		AddString("identifiers", dev.Identifier)
	if dev.Name != "" {
		a.builder.AddString("name", dev.Name)
	}
	if dev.Manufacturer != "" {
		a.builder.AddString("manufacturer", dev.Manufacturer)
	}
	if dev.Model != "" {
		a.builder.AddString("model", dev.Model)
	}
	if dev.SWVersion != "" {
		a.builder.AddString("sw_version", dev.SWVersion)
	}
	a.builder.EndDevice()
}

// announceSensor builds and publishes one sensor's config payload.
func (a *Announcer) announceSensor(ctx context.Context, sensor Sensor, force bool) error {
	existing, err := a.store.GetByObjectID(ctx, sensor.ObjectID)
	if err != nil && !errors.Is(err, provision.ErrEntityNotFound) {
		return fmt.Errorf("%w: reading %s: %w", ErrRegistryFailed, sensor.ObjectID, err)
	}

	uniqueID := a.newUniqueID()
	firstSeen := existing == nil
	if !firstSeen {
		uniqueID = existing.UniqueID
	}

	doc := a.buildSensorPayload(sensor, uniqueID)
	topic := a.cfg.Topics.SensorConfig(sensor.ObjectID)

	if !force && !firstSeen && existing.Payload == doc && existing.ConfigTopic == topic {
		if a.logger != nil {
			a.logger.Info("config unchanged, skipping announce", "object_id", sensor.ObjectID)
		}
		return nil
	}

	if err := a.pub.PublishString(topic, doc, a.cfg.QoS, a.cfg.Retain); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAnnounceFailed, sensor.ObjectID, err)
	}

	now := a.now().UTC()
	entity := &provision.Entity{
		ObjectID:    sensor.ObjectID,
		UniqueID:    uniqueID,
		ConfigTopic: topic,
		Payload:     doc,
		AnnouncedAt: now,
		UpdatedAt:   now,
	}
	if err := a.store.Upsert(ctx, entity); err != nil {
		return fmt.Errorf("%w: recording %s: %w", ErrRegistryFailed, sensor.ObjectID, err)
	}

	if a.logger != nil {
		// Pull the display name back out of the generated payload rather than
		// recomputing the defaulting rules here.
		name, _ := a.builder.GetString("name")
		a.logger.Info("announced sensor",
			"object_id", sensor.ObjectID,
			"name", name,
			"topic", topic,
			"first_seen", firstSeen,
		)
	}
	return nil
}

// buildSensorPayload appends one sensor's fields after the device checkpoint
// and returns the generated document. Field order is fixed so identical
// configurations produce byte-identical payloads for change detection.
func (a *Announcer) buildSensorPayload(sensor Sensor, uniqueID string) string {
	t := a.cfg.Topics

	a.builder.NextSensor()
	a.builder.AddString("name", sensor.DisplayName()).
		AddString("unique_id", uniqueID).
		AddString("object_id", sensor.ObjectID).
		AddString("state_topic", t.SensorState(sensor.ObjectID)).
		AddString("availability_topic", t.Availability())

	if sensor.DeviceClass != "" {
		a.builder.AddString("device_class", sensor.DeviceClass)
	}
	if sensor.StateClass != "" {
		a.builder.AddString("state_class", sensor.StateClass)
	}
	if sensor.Unit != "" {
		a.builder.AddString("unit_of_meas", sensor.Unit)
	}
	if sensor.Icon != "" {
		a.builder.AddString("icon", sensor.Icon)
	}
	if sensor.ExpireAfter > 0 {
		a.builder.AddInt("expire_after", int64(sensor.ExpireAfter))
	}
	if sensor.ForceUpdate {
		a.builder.AddBool("force_update", true)
	}

	return a.builder.Generate()
}

// cleanupRemoved un-announces registry entities missing from the manifest.
// Home Assistant deletes an entity when its config topic receives an empty
// retained payload.
func (a *Announcer) cleanupRemoved(ctx context.Context) error {
	entities, err := a.store.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: listing entities: %w", ErrRegistryFailed, err)
	}

	manifest := make(map[string]bool, len(a.cfg.Sensors))
	for _, s := range a.cfg.Sensors {
		manifest[s.ObjectID] = true
	}

	for _, entity := range entities {
		if manifest[entity.ObjectID] {
			continue
		}

		if err := a.pub.PublishString(entity.ConfigTopic, "", a.cfg.QoS, true); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCleanupFailed, entity.ObjectID, err)
		}
		if err := a.store.Delete(ctx, entity.ObjectID); err != nil && !errors.Is(err, provision.ErrEntityNotFound) {
			return fmt.Errorf("%w: forgetting %s: %w", ErrRegistryFailed, entity.ObjectID, err)
		}

		if a.logger != nil {
			a.logger.Info("un-announced removed sensor",
				"object_id", entity.ObjectID,
				"topic", entity.ConfigTopic,
			)
		}
	}

	return nil
}

// StatusHandler returns a message handler for Home Assistant's status topic.
// A birth message ("online") triggers a full forced re-announce so a freshly
// restarted Home Assistant rediscovers every entity even on brokers that drop
// retained discovery messages.
func (a *Announcer) StatusHandler(ctx context.Context) func(topic string, message []byte) error {
	return func(topic string, message []byte) error {
		if string(message) != "online" {
			return nil
		}

		if a.logger != nil {
			a.logger.Info("home assistant reported online, re-announcing", "topic", topic)
		}
		if err := a.announceAll(ctx, true); err != nil {
			return fmt.Errorf("re-announcing after birth message: %w", err)
		}
		return nil
	}
}
