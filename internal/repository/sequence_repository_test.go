package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeResult struct{ id, affected int64 }

func (r fakeResult) LastInsertId() (int64, error) { return r.id, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

// fakeCounter stands in for the storage engine: the increment happens as
// one atomic step, exactly the guarantee the single UPDATE statement gives.
type fakeCounter struct{ value int64 }

func (f *fakeCounter) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return fakeResult{id: atomic.AddInt64(&f.value, 1), affected: 1}, nil
}

// flakyExec fails a fixed number of times with the given error before
// delegating to the underlying counter.
type flakyExec struct {
	failures int64
	err      error
	inner    fakeCounter
}

func (f *flakyExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if atomic.AddInt64(&f.failures, -1) >= 0 {
		return nil, f.err
	}
	return f.inner.ExecContext(ctx, query, args...)
}

func TestAllocateNextFormatting(t *testing.T) {
	tests := []struct {
		domain string
		start  int64
		want   string
	}{
		{"member", 1046, "01047"},
		{"member", 99998, "99999"},
		{"payment", 0, "P-000001"},
		{"payment", 122, "P-000123"},
	}
	for _, tc := range tests {
		r := &SequenceRepo{DB: &fakeCounter{value: tc.start}}
		got, err := r.AllocateNext(context.Background(), tc.domain)
		if err != nil {
			t.Fatalf("AllocateNext(%s): %v", tc.domain, err)
		}
		if got != tc.want {
			t.Fatalf("AllocateNext(%s) from %d = %q, want %q", tc.domain, tc.start, got, tc.want)
		}
	}
}

func TestAllocateNextUnknownDomain(t *testing.T) {
	r := &SequenceRepo{DB: &fakeCounter{}}
	if _, err := r.AllocateNext(context.Background(), "invoice"); err == nil {
		t.Fatal("expected error for unknown domain")
	}
}

// TestAllocateNextConcurrent checks the allocation contract: N concurrent
// calls starting from counter value V receive exactly the codes for
// {V+1 .. V+N}, no duplicates, no gaps, regardless of interleaving.
func TestAllocateNextConcurrent(t *testing.T) {
	const (
		n     = 100
		start = 250
	)
	r := &SequenceRepo{DB: &fakeCounter{value: start}}

	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := r.AllocateNext(context.Background(), "payment")
			if err != nil {
				t.Errorf("AllocateNext: %v", err)
				return
			}
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, n)
	for code := range codes {
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d codes, want %d", len(seen), n)
	}
	for v := start + 1; v <= start+n; v++ {
		want := fmt.Sprintf("P-%06d", v)
		if !seen[want] {
			t.Fatalf("missing code %q", want)
		}
	}
}

func TestAllocateNextRetriesTransientConflict(t *testing.T) {
	deadlock := errors.New("Error 1213: Deadlock found when trying to get lock")

	// Two failures fit inside the retry budget.
	r := &SequenceRepo{DB: &flakyExec{failures: 2, err: deadlock}}
	code, err := r.AllocateNext(context.Background(), "member")
	if err != nil {
		t.Fatalf("AllocateNext after transient failures: %v", err)
	}
	if code != "00001" {
		t.Fatalf("code = %q, want %q", code, "00001")
	}

	// Persistent deadlocks exhaust the budget.
	r = &SequenceRepo{DB: &flakyExec{failures: 100, err: deadlock}}
	if _, err := r.AllocateNext(context.Background(), "member"); !errors.Is(err, ErrAllocationExhausted) {
		t.Fatalf("err = %v, want ErrAllocationExhausted", err)
	}
}

func TestAllocateNextStorageUnavailable(t *testing.T) {
	down := errors.New("dial tcp 127.0.0.1:3306: connection refused")
	r := &SequenceRepo{DB: &flakyExec{failures: 100, err: down}}
	if _, err := r.AllocateNext(context.Background(), "payment"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}

// missingRow simulates an unseeded counter table: the UPDATE matches
// nothing.
type missingRow struct{}

func (missingRow) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return fakeResult{id: 0, affected: 0}, nil
}

func TestAllocateNextMissingCounterRow(t *testing.T) {
	r := &SequenceRepo{DB: missingRow{}}
	if _, err := r.AllocateNext(context.Background(), "member"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
}
