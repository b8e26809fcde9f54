// Package database provides SQLite connectivity for hadisco.
//
// This package manages:
//   - Database connection lifecycle with WAL mode and busy timeout
//   - Schema migrations from embedded SQL files
//   - Health checking
//
// The database backs the provisioning registry: which entities have been
// announced, under which unique_id, and with what payload. SQLite suits the
// deployment target (one small daemon, one writer, zero administration).
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
