package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shotapi/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges the configured username and password for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  successEnvelope{data=service.LoginResult}
// @Failure      400   {object}  failureEnvelope
// @Failure      401   {object}  failureEnvelope
// @Router       /auth/login [post]
func Login(svc service.AuthService, log *zap.Logger) fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		var req loginRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return Fail(fiber.StatusBadRequest, MsgInvalidJSON, nil)
		}

		res, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return fromError(c, log, err)
		}
		return OK("Login successful", res)
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Tokens are stateless; the client discards its copy.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  successEnvelope
// @Router       /auth/logout [post]
func Logout() fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		return OK("Logout successful", nil)
	})
}
