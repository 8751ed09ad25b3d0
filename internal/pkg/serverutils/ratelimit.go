package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// RateLimitMiddleware limits requests per authenticated user within a fixed
// one-minute window. Must run after JwtMiddleware so user_id is set.
func RateLimitMiddleware(limit int) fiber.Handler {
	counters := cache.New(time.Minute, 5*time.Minute)

	return func(ctx *fiber.Ctx) error {
		userId, _ := ctx.Locals("user_id").(string)
		if userId == "" {
			return ctx.Next()
		}

		key := fmt.Sprintf("rl:%s", userId)
		count, err := counters.IncrementInt(key, 1)
		if err != nil {
			counters.Set(key, 1, cache.DefaultExpiration)
			count = 1
		}

		if count > limit {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(ErrorResponse(fiber.StatusTooManyRequests, "rate limit exceeded, try again later"))
		}

		return ctx.Next()
	}
}
