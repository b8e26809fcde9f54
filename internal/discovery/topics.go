package discovery

import "fmt"

// Topics provides builders for the MQTT topics hadisco publishes to and
// watches. Using these helpers ensures consistent topic naming across the
// codebase.
//
//	topics := discovery.Topics{Prefix: "homeassistant", NodeID: "plantsense-01"}
//	configTopic := topics.SensorConfig("soil_moisture")
//	// Returns: "homeassistant/sensor/plantsense-01/soil_moisture/config"
type Topics struct {
	// Prefix is the discovery prefix configured in Home Assistant's MQTT
	// integration. Default installation value: "homeassistant".
	Prefix string

	// NodeID is the node segment identifying this device in discovery topics.
	NodeID string
}

// SensorConfig returns the discovery config topic for a sensor entity.
// Home Assistant subscribes to <prefix>/sensor/+/+/config.
//
// Example: homeassistant/sensor/plantsense-01/soil_moisture/config
func (t Topics) SensorConfig(objectID string) string {
	return fmt.Sprintf("%s/sensor/%s/%s/config", t.Prefix, t.NodeID, objectID)
}

// SensorState returns the state topic announced for a sensor entity. The
// measurement publisher (the device firmware) writes readings here; hadisco
// only references it in config payloads.
//
// Example: homeassistant/sensor/plantsense-01/soil_moisture/state
func (t Topics) SensorState(objectID string) string {
	return fmt.Sprintf("%s/sensor/%s/%s/state", t.Prefix, t.NodeID, objectID)
}

// Availability returns the node-wide availability topic. All announced
// entities reference it, so one retained offline payload marks every entity
// unavailable at once.
//
// Example: homeassistant/sensor/plantsense-01/availability
func (t Topics) Availability() string {
	return fmt.Sprintf("%s/sensor/%s/availability", t.Prefix, t.NodeID)
}

// Status returns Home Assistant's own status topic, where its birth and will
// messages ("online"/"offline") are published.
//
// Example: homeassistant/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/status", t.Prefix)
}
