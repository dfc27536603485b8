package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclesense/internal/services"
)

func (handler *Handler) ListSymptoms(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	logs, err := handler.journal.ListSymptoms(c.UserContext(), user.ID, parseLimit(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"symptoms": logs})
}

func (handler *Handler) LogSymptoms(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	var input services.SymptomInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	entry, err := handler.journal.LogSymptoms(c.UserContext(), user.ID, input, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) DeleteSymptoms(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	logID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid symptom log id")
	}

	if err := handler.journal.DeleteSymptoms(c.UserContext(), user.ID, logID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ListCheckIns(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	checkIns, err := handler.journal.ListCheckIns(c.UserContext(), user.ID, parseLimit(c))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"check_ins": checkIns})
}

func (handler *Handler) CheckIn(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	var input services.CheckInInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	entry, err := handler.journal.CheckIn(c.UserContext(), user.ID, input, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(entry)
}
