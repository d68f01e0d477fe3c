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

// MemberStore is the slice of the member repository the handler needs.
type MemberStore interface {
	List(ctx context.Context) ([]model.Member, error)
	GetByID(ctx context.Context, id uint64) (model.Member, error)
	Create(ctx context.Context, m model.Member) (uint64, error)
	Update(ctx context.Context, m model.Member) (int64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
	Search(ctx context.Context, q string) ([]model.Member, error)
}

// CodeAllocator hands out the next human-readable code for a domain.  It is
// satisfied by repository.SequenceRepo.
type CodeAllocator interface {
	AllocateNext(ctx context.Context, domain string) (string, error)
}

// MemberHandler bundles dependencies for member endpoints.
type MemberHandler struct {
	Members MemberStore
	Codes   CodeAllocator
	Publish PublishFunc
}

func NewMemberHandler(m MemberStore, codes CodeAllocator, publish PublishFunc) *MemberHandler {
	return &MemberHandler{Members: m, Codes: codes, Publish: publish}
}

type memberReq struct {
	Status    string `json:"status"`
	Rank      string `json:"rank"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Unit      string `json:"unit"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type memberResp struct {
	ID         uint64 `json:"id"`
	MemberCode string `json:"memberCode"`
	Status     string `json:"status"`
	Rank       string `json:"rank"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Unit       string `json:"unit"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

func toMemberResp(m model.Member) memberResp {
	return memberResp{
		ID: m.ID, MemberCode: m.MemberCode, Status: m.Status, Rank: m.Rank,
		FirstName: m.FirstName, LastName: m.LastName, Unit: m.Unit,
		Email: m.Email, Phone: m.Phone, Address: m.Address,
	}
}

// List returns all members; with a non-empty ?q= it performs a search
// instead.
func (h *MemberHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	var (
		members []model.Member
		err     error
	)
	if q := c.QueryParam("q"); q != "" {
		members, err = h.Members.Search(ctx, q)
	} else {
		members, err = h.Members.List(ctx)
	}
	if err != nil {
		log.Printf("members: list: %v", err)
		return serverError(c, "list members failed")
	}
	out := make([]memberResp, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one member by id.
func (h *MemberHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("members: get %d: %v", id, err)
		return serverError(c, "get member failed")
	}
	return c.JSON(http.StatusOK, toMemberResp(m))
}

// Create allocates the next member code and inserts the record.  When
// allocation fails the request fails; a code is never made up on the spot,
// because a duplicated or out-of-band code can never be corrected later.
func (h *MemberHandler) Create(c echo.Context) error {
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	subject, _ := middleware.Subject(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	code, err := h.Codes.AllocateNext(ctx, "member")
	if err != nil {
		log.Printf("members: allocate code: %v", err)
		return serverError(c, "create member failed")
	}
	m := model.Member{
		MemberCode: code,
		Status:     req.Status,
		Rank:       req.Rank,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Unit:       req.Unit,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
	}
	id, err := h.Members.Create(ctx, m)
	if err != nil {
		log.Printf("members: create: %v", err)
		return serverError(c, "create member failed")
	}
	m.ID = id

	publishAsync(h.Publish, queue.AuditEvent{
		Action:     "member.created",
		Entity:     "member",
		EntityID:   id,
		Code:       code,
		ActorID:    subject.ID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, toMemberResp(m))
}

// Update rewrites a member's mutable fields.  Zero affected rows means the
// member does not exist.
func (h *MemberHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	affected, err := h.Members.Update(ctx, model.Member{
		ID: id, Status: req.Status, Rank: req.Rank,
		FirstName: req.FirstName, LastName: req.LastName, Unit: req.Unit,
		Email: req.Email, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		log.Printf("members: update %d: %v", id, err)
		return serverError(c, "update member failed")
	}
	if affected == 0 {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete removes a member.  Zero affected rows means the member does not
// exist.
func (h *MemberHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	affected, err := h.Members.Delete(ctx, id)
	if err != nil {
		log.Printf("members: delete %d: %v", id, err)
		return serverError(c, "delete member failed")
	}
	if affected == 0 {
		return notFound(c)
	}
	return c.NoContent(http.StatusNoContent)
}
