// Package storage is the durable boundary for the dashboard: a key/value
// Provider with file, SQLite and in-memory drivers, and typed collections on
// top of it.
package storage

import "errors"

// ErrNotExist is returned by Provider.Get for a key that was never written
// or has been deleted.
var ErrNotExist = errors.New("storage: key does not exist")

// Provider stores one opaque value per key.
type Provider interface {
	// Get returns the value stored under key, or ErrNotExist.
	Get(key string) ([]byte, error)
	// Set atomically replaces the value under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Close releases the driver's resources.
	Close() error
}

// Drivers.
const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open builds the Provider for driver. path is the store directory for the
// fs driver and the database file for sqlite; memory ignores it.
func Open(driver, path string) (Provider, error) {
	switch driver {
	case DriverFS, "":
		return NewFS(path)
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, errors.New("storage: unknown driver " + driver)
	}
}
