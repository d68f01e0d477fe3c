package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/queue"
)

// reqTimeout bounds every database round trip issued by a handler.
const reqTimeout = 5 * time.Second

// PublishFunc delivers an audit event to the message broker.  Handlers hold
// it as a field so tests can capture events without a broker; a nil value
// disables publishing.
type PublishFunc func(ctx context.Context, ev queue.AuditEvent) error

// publishAsync fires an audit event without blocking the request and
// without letting a broker outage fail the mutation the event describes.
// Errors are logged inside the publisher.
func publishAsync(publish PublishFunc, ev queue.AuditEvent) {
	if publish == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = publish(ctx, ev)
	}()
}

// paramID parses the :id route parameter.
func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}

func serverError(c echo.Context, msg string) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
