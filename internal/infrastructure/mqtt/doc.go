// Package mqtt provides MQTT client connectivity for hadisco.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained discovery payload publishing with QoS guarantees
//   - The Home Assistant availability contract (online/offline + LWT)
//   - Subscription to Home Assistant's status topic for restart detection
//   - Connection health monitoring
//
// # Architecture
//
// hadisco talks to the same broker Home Assistant's MQTT integration is
// connected to. Discovery config payloads are published retained so a
// restarting Home Assistant rediscovers every entity without hadisco's
// involvement; the status-topic subscription covers brokers where retained
// discovery is disabled.
//
//	hadisco → MQTT Broker ← Home Assistant
//
// # Security Considerations
//
//   - TLS is recommended for any broker not on a trusted LAN segment
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, topics.Availability())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(topics.SensorConfig("soil_moisture"), payload)
package mqtt
