package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/leonberkemeier/Receiptly/internal/models"
	"github.com/leonberkemeier/Receiptly/internal/service"
	"github.com/leonberkemeier/Receiptly/pkg/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes and validates a JSON body. On failure the response has
// already been written and the returned error is the one to hand to Fiber.
func parseBody(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// drop the top-level struct name: "ReceiptCreateRequest.items[0].name"
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func currentUser(c *fiber.Ctx) (models.User, error) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return models.User{}, fiber.NewError(fiber.StatusUnauthorized, "Could not validate credentials")
	}
	return user, nil
}

// respondError maps service errors onto HTTP responses.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, resource, action string) error {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrReceiptNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Receipt not found",
		})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": resource + " not found",
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": verr.Error(),
		})
	case errors.Is(err, service.ErrAnalyzerDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Receipt analysis is not configured",
		})
	}

	logger.Error("Request failed",
		zap.String("action", action),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fmt.Sprintf("Failed to %s: %v", action, err),
	})
}

// queryInt parses an optional integer query parameter.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: key, Message: "must be an integer"}
	}
	return v, nil
}

func queryPage(c *fiber.Ctx) (service.Page, error) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return service.Page{}, err
	}
	limit, err := queryInt(c, "limit", service.DefaultLimit)
	if err != nil {
		return service.Page{}, err
	}
	if skip < 0 {
		return service.Page{}, &service.ValidationError{Field: "skip", Message: "must not be negative"}
	}
	if limit < 1 {
		return service.Page{}, &service.ValidationError{Field: "limit", Message: "must be positive"}
	}
	return service.Page{Skip: skip, Limit: limit}, nil
}
