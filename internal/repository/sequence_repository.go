package repository

import (
    "context"
    "database/sql"
    "fmt"
    "strings"
    "time"
)

// Execer is the slice of *sql.DB the sequence allocator needs.  Both
// *sql.DB and *sql.Tx satisfy it.
type Execer interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// domainFormat describes how a counter value becomes a human-readable code.
// This table is the only place in the codebase that defines the mapping, so
// every call site produces identically formatted codes.
type domainFormat struct {
    prefix string
    width  int
}

var domainFormats = map[string]domainFormat{
    "member":  {prefix: "", width: 5},   // "01047"
    "payment": {prefix: "P-", width: 6}, // "P-000123"
}

const (
    allocAttempts = 3
    allocBackoff  = 25 * time.Millisecond
)

// SequenceRepo allocates human-readable codes from per-domain monotonic
// counters stored in the sequence_counters table.  Multiple server
// processes may allocate concurrently: correctness comes entirely from the
// storage engine executing the increment as one statement, so no in-process
// or distributed lock is involved.
type SequenceRepo struct{ DB Execer }

// NewSequenceRepo returns a SequenceRepo bound to the provided database.
func NewSequenceRepo(db *sql.DB) *SequenceRepo { return &SequenceRepo{DB: db} }

// AllocateNext atomically increments the counter for the given domain and
// returns the formatted code for the new value.  Given K concurrent calls
// starting from counter value V, the calls collectively receive codes for
// {V+1 .. V+K}, each exactly once, regardless of interleaving or process
// count.
//
// The increment uses MySQL's LAST_INSERT_ID(expr) idiom: the UPDATE both
// bumps the counter and stashes the new value in the connection's
// last-insert-id slot, so the read-back is not a second racy query.
// Transient conflicts (deadlock, lock wait timeout) are retried a bounded
// number of times with backoff before giving up with
// ErrAllocationExhausted.  Any other storage failure surfaces as
// ErrStorageUnavailable; a code is never fabricated.
func (r *SequenceRepo) AllocateNext(ctx context.Context, domain string) (string, error) {
    f, ok := domainFormats[domain]
    if !ok {
        return "", fmt.Errorf("sequence: unknown domain %q", domain)
    }

    var lastErr error
    for attempt := 1; attempt <= allocAttempts; attempt++ {
        res, err := r.DB.ExecContext(ctx,
            "UPDATE sequence_counters SET value = LAST_INSERT_ID(value + 1) WHERE domain = ?",
            domain)
        if err != nil {
            if !isTransient(err) {
                return "", fmt.Errorf("sequence: %v: %w", err, ErrStorageUnavailable)
            }
            lastErr = err
            time.Sleep(time.Duration(attempt) * allocBackoff)
            continue
        }
        affected, err := res.RowsAffected()
        if err != nil {
            return "", fmt.Errorf("sequence: rows affected: %v: %w", err, ErrStorageUnavailable)
        }
        if affected == 0 {
            // Counter row was never seeded; retrying cannot help.
            return "", fmt.Errorf("sequence: counter missing for domain %q: %w", domain, ErrStorageUnavailable)
        }
        value, err := res.LastInsertId()
        if err != nil {
            return "", fmt.Errorf("sequence: read counter value: %v: %w", err, ErrStorageUnavailable)
        }
        return fmt.Sprintf("%s%0*d", f.prefix, f.width, value), nil
    }
    return "", fmt.Errorf("sequence: %v: %w", lastErr, ErrAllocationExhausted)
}

// isTransient reports whether an error is a MySQL conflict worth retrying:
// 1213 is a deadlock, 1205 a lock wait timeout.
func isTransient(err error) bool {
    msg := err.Error()
    return strings.Contains(msg, "1213") || strings.Contains(msg, "1205")
}
