package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/middleware"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/queue"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/repository"
)

// PaymentStore is the slice of the payment repository the handler needs.
type PaymentStore interface {
	List(ctx context.Context, memberID uint64) ([]model.Payment, error)
	GetByID(ctx context.Context, id uint64) (model.Payment, error)
	Create(ctx context.Context, p model.Payment) (uint64, error)
	Delete(ctx context.Context, id uint64) (int64, error)
}

// PaymentHandler bundles dependencies for payment endpoints.
type PaymentHandler struct {
	Payments PaymentStore
	Codes    CodeAllocator
	Publish  PublishFunc
}

func NewPaymentHandler(p PaymentStore, codes CodeAllocator, publish PublishFunc) *PaymentHandler {
	return &PaymentHandler{Payments: p, Codes: codes, Publish: publish}
}

type paymentReq struct {
	MemberID         uint64 `json:"memberId"`
	PaidAt           string `json:"paidAt"` // "2006-01-02"
	AmountBani       int64  `json:"amountBani"`
	Method           string `json:"method"`
	Status           string `json:"status"`
	PaymentType      string `json:"paymentType"`
	ContributionYear int    `json:"contributionYear"`
}

type paymentResp struct {
	ID               uint64 `json:"id"`
	PaymentCode      string `json:"paymentCode"`
	MemberID         uint64 `json:"memberId"`
	PaidAt           string `json:"paidAt"`
	AmountBani       int64  `json:"amountBani"`
	Method           string `json:"method"`
	Status           string `json:"status"`
	PaymentType      string `json:"paymentType"`
	ContributionYear int    `json:"contributionYear"`
}

func toPaymentResp(p model.Payment) paymentResp {
	return paymentResp{
		ID: p.ID, PaymentCode: p.PaymentCode, MemberID: p.MemberID,
		PaidAt: p.PaidAt.Format("2006-01-02"), AmountBani: p.AmountBani,
		Method: p.Method, Status: p.Status, PaymentType: p.PaymentType,
		ContributionYear: p.ContributionYear,
	}
}

// List returns payments, optionally restricted to ?member_id=.
func (h *PaymentHandler) List(c echo.Context) error {
	var memberID uint64
	if s := c.QueryParam("member_id"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return badRequest(c, "invalid member_id")
		}
		memberID = n
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	payments, err := h.Payments.List(ctx, memberID)
	if err != nil {
		log.Printf("payments: list: %v", err)
		return serverError(c, "list payments failed")
	}
	out := make([]paymentResp, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one payment by id.
func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	p, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("payments: get %d: %v", id, err)
		return serverError(c, "get payment failed")
	}
	return c.JSON(http.StatusOK, toPaymentResp(p))
}

// Create allocates the next payment code and inserts the record.  An
// allocation failure fails the request; the handler never substitutes a
// fabricated code.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.MemberID == 0 {
		return badRequest(c, "memberId required")
	}
	paidAt, err := time.Parse("2006-01-02", req.PaidAt)
	if err != nil {
		return badRequest(c, "invalid paidAt")
	}
	subject, _ := middleware.Subject(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	code, err := h.Codes.AllocateNext(ctx, "payment")
	if err != nil {
		log.Printf("payments: allocate code: %v", err)
		return serverError(c, "create payment failed")
	}
	p := model.Payment{
		PaymentCode:      code,
		MemberID:         req.MemberID,
		PaidAt:           paidAt,
		AmountBani:       req.AmountBani,
		Method:           req.Method,
		Status:           req.Status,
		PaymentType:      req.PaymentType,
		ContributionYear: req.ContributionYear,
	}
	id, err := h.Payments.Create(ctx, p)
	if err != nil {
		log.Printf("payments: create: %v", err)
		return serverError(c, "create payment failed")
	}
	p.ID = id

	publishAsync(h.Publish, queue.AuditEvent{
		Action:     "payment.created",
		Entity:     "payment",
		EntityID:   id,
		Code:       code,
		ActorID:    subject.ID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, toPaymentResp(p))
}

// Delete removes a payment.  Zero affected rows means the payment does not
// exist.
func (h *PaymentHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	affected, err := h.Payments.Delete(ctx, id)
	if err != nil {
		log.Printf("payments: delete %d: %v", id, err)
		return serverError(c, "delete payment failed")
	}
	if affected == 0 {
		return notFound(c)
	}
	return c.NoContent(http.StatusNoContent)
}
