package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclesense/internal/services"
)

type endCycleRequest struct {
	EndDate string `json:"end_date" form:"end_date"`
}

func (handler *Handler) ListCycles(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	cycles, err := handler.cycles.List(c.UserContext(), user.ID, parseLimit(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"cycles": cycles})
}

func (handler *Handler) CreateCycle(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	var input services.CycleInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	created, err := handler.cycles.Create(c.UserContext(), user.ID, input, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (handler *Handler) EndCycle(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	cycleID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid cycle id")
	}

	var input endCycleRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}

	updated, err := handler.cycles.End(c.UserContext(), user.ID, cycleID, input.EndDate)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(updated)
}

func (handler *Handler) DeleteCycle(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	cycleID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid cycle id")
	}

	if err := handler.cycles.Delete(c.UserContext(), user.ID, cycleID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
