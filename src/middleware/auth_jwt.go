package middleware

import (
	"strings"

	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LocalOperatorID = "operatorId"
	LocalRole       = "role"
)

// AuthJWT resolves the calling operator from a bearer token. Authorization
// policy is decided upstream; this only establishes who is calling.
func AuthJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Missing or invalid Authorization header")
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}
		operatorID, err := primitive.ObjectIDFromHex(claims.OperatorID)
		if err != nil || (claims.Role != models.OperatorAdmin && claims.Role != models.OperatorTeacher) {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Token does not identify an operator")
		}

		c.Locals(LocalOperatorID, operatorID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// Operator returns the operator set by AuthJWT.
func Operator(c *fiber.Ctx) (primitive.ObjectID, string) {
	id, _ := c.Locals(LocalOperatorID).(primitive.ObjectID)
	role, _ := c.Locals(LocalRole).(string)
	return id, role
}
