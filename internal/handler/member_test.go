package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/auth"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/middleware"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/queue"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/repository"
)

type fakeMemberStore struct {
	mu    sync.Mutex
	next  uint64
	items map[uint64]model.Member
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{items: make(map[uint64]model.Member)}
}

func (f *fakeMemberStore) List(ctx context.Context) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Member
	for _, m := range f.items {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMemberStore) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return model.Member{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMemberStore) Create(ctx context.Context, m model.Member) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	m.ID = f.next
	f.items[m.ID] = m
	return m.ID, nil
}

func (f *fakeMemberStore) Update(ctx context.Context, m model.Member) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.items[m.ID]
	if !ok {
		return 0, nil
	}
	// member_code sticks: only the mutable fields move.
	code := cur.MemberCode
	cur = m
	cur.MemberCode = code
	f.items[m.ID] = cur
	return 1, nil
}

func (f *fakeMemberStore) Delete(ctx context.Context, id uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakeMemberStore) Search(ctx context.Context, q string) ([]model.Member, error) {
	return f.List(ctx)
}

// fakeAllocator hands out sequential member codes, or fails every call with
// a fixed error.
type fakeAllocator struct {
	mu    sync.Mutex
	value int64
	err   error
}

func (f *fakeAllocator) AllocateNext(ctx context.Context, domain string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value++
	if domain == "payment" {
		return fmt.Sprintf("P-%06d", f.value), nil
	}
	return fmt.Sprintf("%05d", f.value), nil
}

func newMemberServer(store *fakeMemberStore, alloc *fakeAllocator, events chan queue.AuditEvent) *echo.Echo {
	e := echo.New()
	h := NewMemberHandler(store, alloc, capturePublish(events))
	api := e.Group("/v1")
	api.Use(middleware.AuthGuard(testSecret))
	api.POST("/members", h.Create)
	api.GET("/members/:id", h.Get)
	api.PUT("/members/:id", h.Update)
	api.DELETE("/members/:id", h.Delete)
	return e
}

func doAuthedJSON(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.Sign("u1", "", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestCreateMemberAssignsCode(t *testing.T) {
	store := newFakeMemberStore()
	alloc := &fakeAllocator{value: 1046}
	events := make(chan queue.AuditEvent, 4)
	e := newMemberServer(store, alloc, events)

	rr := doAuthedJSON(t, e, http.MethodPost, "/v1/members", map[string]string{
		"firstName": "Ion", "lastName": "Popescu", "status": "Activ",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var resp memberResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.MemberCode != "01047" {
		t.Fatalf("memberCode = %q, want %q", resp.MemberCode, "01047")
	}

	select {
	case ev := <-events:
		if ev.Action != "member.created" || ev.Code != "01047" || ev.ActorID != "u1" {
			t.Fatalf("unexpected audit event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event published")
	}
}

// TestCreateMemberAllocationFailure checks that an allocation failure fails
// the request outright: no row is inserted and no code is invented.
func TestCreateMemberAllocationFailure(t *testing.T) {
	store := newFakeMemberStore()
	alloc := &fakeAllocator{err: repository.ErrAllocationExhausted}
	e := newMemberServer(store, alloc, make(chan queue.AuditEvent, 1))

	rr := doAuthedJSON(t, e, http.MethodPost, "/v1/members", map[string]string{"firstName": "Ion"})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	members, _ := store.List(context.Background())
	if len(members) != 0 {
		t.Fatalf("member inserted despite allocation failure: %+v", members)
	}
}

func TestUpdateMemberKeepsCode(t *testing.T) {
	store := newFakeMemberStore()
	alloc := &fakeAllocator{}
	e := newMemberServer(store, alloc, make(chan queue.AuditEvent, 4))

	rr := doAuthedJSON(t, e, http.MethodPost, "/v1/members", map[string]string{"firstName": "Ion"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rr.Code)
	}
	rr = doAuthedJSON(t, e, http.MethodPut, "/v1/members/1", map[string]string{"firstName": "Vasile"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update: status = %d: %s", rr.Code, rr.Body.String())
	}

	m, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.MemberCode != "00001" {
		t.Fatalf("memberCode = %q, want unchanged %q", m.MemberCode, "00001")
	}
	if m.FirstName != "Vasile" {
		t.Fatalf("firstName = %q, want %q", m.FirstName, "Vasile")
	}
}

func TestUpdateMissingMember(t *testing.T) {
	store := newFakeMemberStore()
	e := newMemberServer(store, &fakeAllocator{}, make(chan queue.AuditEvent, 1))

	rr := doAuthedJSON(t, e, http.MethodPut, "/v1/members/42", map[string]string{"firstName": "X"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestDeleteMember(t *testing.T) {
	store := newFakeMemberStore()
	e := newMemberServer(store, &fakeAllocator{}, make(chan queue.AuditEvent, 4))

	rr := doAuthedJSON(t, e, http.MethodPost, "/v1/members", map[string]string{"firstName": "Ion"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rr.Code)
	}
	if rr = doAuthedJSON(t, e, http.MethodDelete, "/v1/members/1", nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", rr.Code)
	}
	if rr = doAuthedJSON(t, e, http.MethodDelete, "/v1/members/1", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", rr.Code)
	}
	if _, err := store.GetByID(context.Background(), 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("member still present after delete: %v", err)
	}
}
