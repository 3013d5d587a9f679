// Package stores provides the build history persistence layer.
// It includes SQLite-based storage with WAL mode, connection pooling,
// and CRUD operations for builds, their operation logs, exported
// files, and engine switches.
package stores
