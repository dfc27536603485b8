package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclesense/internal/services"
)

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	profile, err := handler.profiles.Get(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(profile)
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	var update services.ProfileUpdate
	if err := parseBody(c, &update); err != nil {
		return err
	}

	profile, err := handler.profiles.Update(c.UserContext(), user.ID, update, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(profile)
}
