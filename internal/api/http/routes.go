package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/gag-stock-relay/internal/relay"
	"github.com/i474232898/gag-stock-relay/internal/render"
	"github.com/i474232898/gag-stock-relay/internal/store"
)

var validate = validator.New()

// Relay is the part of relay.Service the API drives.
type Relay interface {
	Run(ctx context.Context) (relay.RunRecord, error)
	Preview(ctx context.Context) (render.Message, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. runTimeout
// bounds manual runs and previews.
func RegisterRoutes(app *fiber.App, svc Relay, history relay.Store, runTimeout time.Duration) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "gag-stock-relay",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/preview", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), runTimeout)
		defer cancel()

		msg, err := svc.Preview(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(msg)
	})

	v1.Post("/runs", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), runTimeout)
		defer cancel()

		rec, err := svc.Run(ctx)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(rec)
		}
		return c.Status(fiber.StatusAccepted).JSON(rec)
	})

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		rec, err := history.GetLatest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no runs recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}
		return c.JSON(rec)
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		runs, err := history.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no runs in requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}

		return c.JSON(fiber.Map{
			"from": req.From,
			"to":   req.To,
			"runs": runs,
		})
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// historyQuery holds query parameters for the run history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
