package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleToken exchanges form credentials for a bearer token.
// POST /auth/token
func (h *Handler) HandleToken(c *fiber.Ctx) error {
	if h.auth == nil {
		return fiber.NewError(fiber.StatusNotFound, "Authentication is disabled")
	}

	user, err := h.auth.Authenticate(c.UserContext(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return err
	}

	token, err := h.auth.IssueToken(user.Username)
	if err != nil {
		return err
	}

	h.log.Info("issued access token", zap.String("username", user.Username))
	return c.JSON(tokenResponse{AccessToken: token, TokenType: "bearer"})
}
