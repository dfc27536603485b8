package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetEstimate(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	estimate, err := handler.forecasts.Estimate(c.UserContext(), user.ID, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(estimate)
}

func (handler *Handler) GetPrediction(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	prediction, err := handler.forecasts.Predict(c.UserContext(), user.ID, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(prediction)
}

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	dashboard, err := handler.forecasts.Dashboard(c.UserContext(), user.ID, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(dashboard)
}

func (handler *Handler) GetCalendar(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	calendar, err := handler.forecasts.Calendar(c.UserContext(), user.ID, c.Query("month"), handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(calendar)
}
