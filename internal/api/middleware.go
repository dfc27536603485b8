package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/cyclesense/internal/models"
)

const (
	authCookieName = "cyclesense_auth"
	contextUserKey = "current_user"
)

var errUnauthenticated = errors.New("unauthenticated")

type authClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

// AuthRequired accepts the session cookie or an Authorization bearer token.
// Accounts flagged must_change_password may only change the password or log out.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	if user.MustChangePassword && !allowedDuringPasswordChange(c.Path()) {
		return apiError(c, fiber.StatusForbidden, "password change required")
	}
	return c.Next()
}

func allowedDuringPasswordChange(path string) bool {
	switch strings.TrimSuffix(path, "/") {
	case "/api/auth/logout", "/api/auth/password", "/api/auth/me":
		return true
	default:
		return false
	}
}

// authenticateRequest tries the session cookie first and falls back to the
// bearer token, so a stale cookie does not shadow a valid header.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	candidates := make([]string, 0, 2)
	if cookie := strings.TrimSpace(c.Cookies(authCookieName)); cookie != "" {
		candidates = append(candidates, cookie)
	}
	if bearer := bearerToken(c.Get(fiber.HeaderAuthorization)); bearer != "" {
		candidates = append(candidates, bearer)
	}

	for _, tokenValue := range candidates {
		user, err := handler.userFromToken(c, tokenValue)
		if err == nil {
			return user, nil
		}
	}
	return nil, errUnauthenticated
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func (handler *Handler) userFromToken(c *fiber.Ctx, tokenValue string) (*models.User, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errUnauthenticated
	}

	user, err := handler.auth.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		return nil, errUnauthenticated
	}
	return &user, nil
}

func (handler *Handler) buildToken(user *models.User) (string, time.Time, error) {
	now := handler.now()
	expiresAt := now.Add(handler.tokenTTL)

	claims := authClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
	return signed, expiresAt, err
}

func (handler *Handler) setAuthCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  expiresAt,
	})
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(-1 * time.Hour),
	})
}
