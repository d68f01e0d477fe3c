package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/middleware"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/queue"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/repository"
)

// ActivityStore is the slice of the activity repository the handler needs.
type ActivityStore interface {
	List(ctx context.Context, status string) ([]model.Activity, error)
	GetByID(ctx context.Context, id uint64) (model.Activity, error)
	Create(ctx context.Context, a model.Activity) (uint64, error)
	Update(ctx context.Context, a model.Activity) (int64, error)
	Archive(ctx context.Context, id uint64, archivedBy string) (int64, error)
	Reactivate(ctx context.Context, id uint64) (int64, error)
}

// ActivityHandler bundles dependencies for activity endpoints.
type ActivityHandler struct {
	Activities ActivityStore
	Publish    PublishFunc
}

func NewActivityHandler(a ActivityStore, publish PublishFunc) *ActivityHandler {
	return &ActivityHandler{Activities: a, Publish: publish}
}

type activityReq struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	HeldAt   string `json:"heldAt"` // "2006-01-02"
}

type activityResp struct {
	ID         uint64  `json:"id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	HeldAt     string  `json:"heldAt"`
	Status     string  `json:"status"`
	ArchivedAt *string `json:"archivedAt"`
	ArchivedBy *string `json:"archivedBy"`
}

func toActivityResp(a model.Activity) activityResp {
	out := activityResp{
		ID: a.ID, Title: a.Title, Category: a.Category,
		HeldAt: a.HeldAt.Format("2006-01-02"), Status: a.Status,
		ArchivedBy: a.ArchivedBy,
	}
	if a.ArchivedAt != nil {
		s := a.ArchivedAt.UTC().Format(time.RFC3339)
		out.ArchivedAt = &s
	}
	return out
}

// List returns activities, optionally filtered by ?status=active|archived.
func (h *ActivityHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != model.ActivityStatusActive && status != model.ActivityStatusArchived {
		return badRequest(c, "invalid status")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	activities, err := h.Activities.List(ctx, status)
	if err != nil {
		log.Printf("activities: list: %v", err)
		return serverError(c, "list activities failed")
	}
	out := make([]activityResp, 0, len(activities))
	for _, a := range activities {
		out = append(out, toActivityResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one activity by id.
func (h *ActivityHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	a, err := h.Activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("activities: get %d: %v", id, err)
		return serverError(c, "get activity failed")
	}
	return c.JSON(http.StatusOK, toActivityResp(a))
}

// Create inserts a new activity in the active state.
func (h *ActivityHandler) Create(c echo.Context) error {
	var req activityReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	heldAt, err := time.Parse("2006-01-02", req.HeldAt)
	if err != nil {
		return badRequest(c, "invalid heldAt")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	a := model.Activity{Title: req.Title, Category: req.Category, HeldAt: heldAt, Status: model.ActivityStatusActive}
	id, err := h.Activities.Create(ctx, a)
	if err != nil {
		log.Printf("activities: create: %v", err)
		return serverError(c, "create activity failed")
	}
	a.ID = id
	return c.JSON(http.StatusCreated, toActivityResp(a))
}

// Update rewrites an activity's descriptive fields.
func (h *ActivityHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req activityReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	heldAt, err := time.Parse("2006-01-02", req.HeldAt)
	if err != nil {
		return badRequest(c, "invalid heldAt")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	affected, err := h.Activities.Update(ctx, model.Activity{ID: id, Title: req.Title, Category: req.Category, HeldAt: heldAt})
	if err != nil {
		log.Printf("activities: update %d: %v", id, err)
		return serverError(c, "update activity failed")
	}
	if affected == 0 {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Archive moves an activity to the archived state, attributing the action
// to the verified subject.  The affected-row count from the repository is
// propagated verbatim: zero rows is a not-found condition, never a silent
// success.
func (h *ActivityHandler) Archive(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	subject, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	affected, err := h.Activities.Archive(ctx, id, subject.ID)
	if err != nil {
		log.Printf("activities: archive %d: %v", id, err)
		return serverError(c, "archive activity failed")
	}
	if affected == 0 {
		return notFound(c)
	}

	publishAsync(h.Publish, queue.AuditEvent{
		Action:     "activity.archived",
		Entity:     "activity",
		EntityID:   id,
		ActorID:    subject.ID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Reactivate returns an archived activity to the active state and clears
// the archive attribution.
func (h *ActivityHandler) Reactivate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	subject, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	affected, err := h.Activities.Reactivate(ctx, id)
	if err != nil {
		log.Printf("activities: reactivate %d: %v", id, err)
		return serverError(c, "reactivate activity failed")
	}
	if affected == 0 {
		return notFound(c)
	}

	publishAsync(h.Publish, queue.AuditEvent{
		Action:     "activity.reactivated",
		Entity:     "activity",
		EntityID:   id,
		ActorID:    subject.ID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
