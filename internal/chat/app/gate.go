package app

import (
	"fmt"

	"focushub/internal/chat/domain"
	"focushub/pkg/logger"
	"focushub/pkg/middlewares"
	"focushub/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// HandshakeGate admits a websocket upgrade only with a valid token.
// Verification is token.ParseJWT, the same rule as the REST middleware.
type HandshakeGate struct {
	parse func(string) (*token.Claims, error)
}

// NewHandshakeGate create a gate verifying with token.ParseJWT
func NewHandshakeGate() *HandshakeGate {
	return &HandshakeGate{parse: token.ParseJWT}
}

// Authenticate returns the user id carried by tok
func (g *HandshakeGate) Authenticate(tok string) (string, error) {
	if tok == "" {
		return "", fmt.Errorf("%w: missing token", domain.ErrUnauthenticated)
	}
	claims, err := g.parse(tok)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return claims.MemberID, nil
}

// Middleware runs before websocket.New: non-upgrade requests get 426, bad
// tokens get 401 and the upgrade never happens.
func (g *HandshakeGate) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		userID, err := g.Authenticate(middlewares.ExtractToken(c))
		if err != nil {
			logger.Log.Info("websocket handshake refused", zap.String("ip", c.IP()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals(middlewares.TokenMemberID, userID)
		return c.Next()
	}
}
