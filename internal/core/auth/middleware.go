package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "staff"

// AuthMiddleware validates Bearer staff tokens. A nil service lets every
// request through, which is how the API runs without JWT_SECRET.
func AuthMiddleware(jwtService *JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if jwtService == nil {
			return c.Next()
		}

		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(claimsKey, claims)
		c.Locals("staffID", claims.StaffID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// Claims returns the staff claims stored by AuthMiddleware, or nil.
func Claims(c *fiber.Ctx) *StaffClaims {
	claims, _ := c.Locals(claimsKey).(*StaffClaims)
	return claims
}

// RequireRole creates a middleware that checks if staff has required role.
// Requests without claims (auth disabled) pass.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(claimsKey) == nil {
			return c.Next()
		}

		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}
