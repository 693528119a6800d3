// Package database handles database connections and schema inspection.
//
// Connect opens either a SQLite file (or ":memory:") or a MySQL server through
// GORM and verifies the connection with a bounded ping. Open accepts any
// dialector, which lets tests wrap a go-sqlmock connection.
//
// GetTableColumns and MissingColumns inspect a live schema. The SQL calendar
// store uses them to report tables that drifted from the expected layout.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
package database
