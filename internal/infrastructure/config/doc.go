// Package config provides configuration loading and validation for hadisco.
//
// Configuration lives in a single YAML file describing the device, the sensor
// manifest to announce, the MQTT broker, discovery settings, and the local
// SQLite registry. Values resolve in three layers:
//
//  1. Hardcoded defaults
//  2. YAML file values
//  3. HADISCO_* environment variables
//
// Secrets (broker credentials) should be supplied via environment variables
// rather than committed to the config file.
//
// # Example
//
//	device:
//	  identifier: plantsense-01
//	  name: Plant Sensor
//	  model: v1.0
//	sensors:
//	  - object_id: soil_moisture
//	    name: Soil Moisture
//	    device_class: moisture
//	    unit_of_measurement: "%"
//	mqtt:
//	  broker:
//	    host: mqtt.local
//	    port: 1883
package config
