package middlewares

import (
	"strings"

	"focushub/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "token"

	//TokenMemberID get member form token, set c.locals name
	TokenMemberID = "MemberID"
	//TokenRole get role form token, set c.locals name
	TokenRole = "role"
	//TokenEmail get email form token, set c.locals name
	TokenEmail = "email"
)

// ExtractToken looks in the auth query, the token cookie, then the Authorization header
func ExtractToken(c *fiber.Ctx) string {
	if t := c.Query(QueryToken); t != "" {
		return t
	}
	if t := c.Cookies(CookieToken); t != "" {
		return t
	}
	if t, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}

// JWTMiddleware validates the request token and stores member id, role and email in c.Locals
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ExtractToken(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := token.ParseJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenMemberID, claims.MemberID)
		c.Locals(TokenRole, claims.Role)
		c.Locals(TokenEmail, claims.Email)

		return c.Next()
	}
}

// MemberID reads the authenticated member id set by JWTMiddleware
func MemberID(c *fiber.Ctx) string {
	id, _ := c.Locals(TokenMemberID).(string)
	return id
}
