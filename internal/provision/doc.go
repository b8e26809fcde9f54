// Package provision tracks which discovery entities this node has announced.
//
// The registry serves three purposes:
//
//   - unique_id stability: Home Assistant keys entity registry history on
//     unique_id, so it is minted exactly once per sensor and persisted here.
//   - change detection: the last published config payload is stored, letting
//     the announcer skip republishing unchanged configs.
//   - cleanup: sensors removed from the manifest are still present here, which
//     is how the announcer knows to publish the deleting empty retained
//     payload before forgetting them.
//
// Persistence is SQLite via the database package; Repository is an interface
// so the announcer can be tested against an in-memory fake.
package provision
