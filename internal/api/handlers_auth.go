package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclesense/internal/models"
	"github.com/terraincognita07/cyclesense/internal/services"
	"go.uber.org/zap"
)

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

type deleteAccountRequest struct {
	Password string `json:"password" form:"password"`
}

type sessionResponse struct {
	Token              string      `json:"token"`
	User               models.User `json:"user"`
	MustChangePassword bool        `json:"must_change_password"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	user, err := handler.auth.Register(c.UserContext(), input, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.logger.Info("user registered", zap.Uint("user_id", user.ID))

	return handler.startSession(c, fiber.StatusCreated, user)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input credentialsRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, services.NormalizeEmail(input.Email))
	if handler.loginLimiter.blocked(limiterKey, now, loginFailureLimit, loginFailureWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.auth.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		handler.loginLimiter.recordFailure(limiterKey, now, loginFailureWindow)
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	return handler.startSession(c, fiber.StatusOK, user)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return c.JSON(user)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	var input changePasswordRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := handler.auth.ChangePassword(c.UserContext(), user.ID, input.CurrentPassword, input.NewPassword); err != nil {
		return handler.respondServiceError(c, err)
	}

	updated, err := handler.auth.FindByID(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return handler.startSession(c, fiber.StatusOK, updated)
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	var input deleteAccountRequest
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := handler.auth.DeleteAccount(c.UserContext(), user.ID, input.Password); err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.logger.Info("account deleted", zap.Uint("user_id", user.ID))

	handler.clearAuthCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) startSession(c *fiber.Ctx, status int, user models.User) error {
	token, expiresAt, err := handler.buildToken(&user)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.setAuthCookie(c, token, expiresAt)

	return c.Status(status).JSON(sessionResponse{
		Token:              token,
		User:               user,
		MustChangePassword: user.MustChangePassword,
	})
}
