package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclesense/internal/services"
	"go.uber.org/zap"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrPasswordUnchanged):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDateInFuture),
		errors.Is(err, services.ErrCycleLengthRange),
		errors.Is(err, services.ErrCycleEndBeforeStart),
		errors.Is(err, services.ErrNoLastPeriod):
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrCycleExists),
		errors.Is(err, services.ErrCycleAlreadyEnded):
		return apiError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrInsightsRateLimited):
		return apiError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrInsightsOutOfCredits):
		return apiError(c, fiber.StatusPaymentRequired, err.Error())
	case errors.Is(err, services.ErrInsightsUnavailable):
		return apiError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		handler.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("requestid")),
			zap.Error(err),
		)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func parseBody(c *fiber.Ctx, target any) error {
	if err := c.BodyParser(target); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err != nil {
		return 0
	}
	return limit
}
