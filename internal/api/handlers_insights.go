package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GenerateInsights(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	report, err := handler.insights.Generate(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(report)
}
