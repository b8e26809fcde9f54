// Package discovery composes and publishes Home Assistant MQTT Discovery
// announcements.
//
// This package manages:
//   - Discovery, state, availability and status topic construction
//   - Per-sensor config payload generation via the payload builder, with the
//     shared device block serialised once and reused across sensors
//   - unique_id stability and payload change detection via the provisioning
//     registry
//   - Removal of entities that have disappeared from the manifest (empty
//     retained config payload)
//   - Re-announcement when Home Assistant's status topic reports "online"
//
// # Payload Conventions
//
// Config payloads are flat JSON objects with one nested "device" block. Keys
// follow Home Assistant's MQTT sensor schema; unit_of_meas is the documented
// abbreviation for unit_of_measurement. The device identifier is published as
// a single string, which Home Assistant accepts in place of an identifier
// list.
//
// # Usage
//
//	topics := discovery.Topics{Prefix: "homeassistant", NodeID: "plantsense-01"}
//	announcer := discovery.NewAnnouncer(cfg, client, store)
//	announcer.SetLogger(log)
//
//	if err := announcer.AnnounceAll(ctx); err != nil {
//	    return err
//	}
//	client.Subscribe(topics.Status(), 1, announcer.StatusHandler(ctx))
package discovery
