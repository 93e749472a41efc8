package db

// Database combines both storage backends for callers that hold one handle
// to everything, like the scheduler daemon.
type Database interface {
	SQLDatabase
	NoSQLDatabase
}

// Config carries the connection settings for one database backend
type Config struct {
	Provider string // "sqlite" or "mongodb"
	URI      string
	Database string // database name, NoSQL backends only
}
