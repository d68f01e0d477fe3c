package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent.
	// clientFoundRows=true makes RowsAffected report rows MATCHED rather than
	// rows changed: targeted updates use that count to tell "record absent"
	// (0) apart from "no-op write to a record already in the target state".
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

var (
	sharedOnce sync.Once
	sharedDB   *sql.DB
	sharedErr  error
)

// Shared returns the process-wide connection pool, constructing it on first
// use.  Concurrent first callers all wait on the same initialization; exactly
// one pool is ever created, and a failed first attempt is returned to every
// caller rather than retried with divergent state.
func Shared(user, pass, host, port, name string) (*sql.DB, error) {
	sharedOnce.Do(func() {
		sharedDB, sharedErr = Open(user, pass, host, port, name)
	})
	return sharedDB, sharedErr
}
