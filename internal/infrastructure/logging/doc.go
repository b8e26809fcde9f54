// Package logging provides structured logging for hadisco.
//
// It wraps the standard library's log/slog with configuration-driven setup:
// level filtering, JSON or text output, destination selection, and default
// service/version attributes on every record.
//
// # Usage
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("announced", "object_id", "soil_moisture", "topic", topic)
//
//	announcerLog := log.With("component", "announcer")
package logging
