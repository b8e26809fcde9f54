// Package payload provides an allocation-conscious JSON document builder for
// Home Assistant MQTT Discovery config payloads.
//
// This package manages:
//   - Incremental construction of one JSON object in a single growable buffer
//   - Typed field appends (string, int, float, bool) with no intermediate values
//   - Bounded nested objects (compile-time depth ceiling)
//   - A cached "device" sub-object reused across sensor payload generations
//   - Best-effort extraction of a top-level string field
//
// # Architecture
//
// Discovery announcements for a fleet of sensors share one device description.
// Serialising that description once and checkpointing the buffer right after
// its closing brace lets every subsequent sensor payload be produced by
// truncating back to the checkpoint and appending only the sensor's own
// fields:
//
//	{"device":{...}} ← permanent prefix   "name":"...","unit_of_meas":"..." ← rebuilt per sensor
//
// # Error Handling
//
// The builder never returns errors. Misuse (exceeding the depth limit, closing
// the root, re-opening a finished device block) is a silent no-op, and
// mismatched Begin/End pairs are not detected; the caller owns nesting
// discipline. GetString reports misses through its second return value.
//
// # Usage
//
//	b := payload.New(256, 4)
//	b.BeginDevice().
//	    AddString("name", "Plant Sensor").
//	    AddString("model", "v1.0").
//	    EndDevice()
//	b.AddString("name", "Soil Moisture").AddString("unit_of_meas", "%")
//	first := b.Generate()
//	b.NextSensor()
//	b.AddString("name", "Plant Battery")
//	second := b.Generate()
package payload
