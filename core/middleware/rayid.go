package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RayIDHeader is the request/response header carrying the request id.
const RayIDHeader = "X-Ray-Id"

// RayID returns a middleware that tags every request with a unique id,
// stored in the request locals and echoed in the response headers so log
// lines and responses can be correlated.
func RayID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RayIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("ray_id", id)
		c.Set(RayIDHeader, id)
		return c.Next()
	}
}
