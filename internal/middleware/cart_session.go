package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// CartIDHeader lets API clients pin their cart explicitly.
	CartIDHeader = "X-Cart-ID"
	// CartIDCookie keeps browser sessions on the same cart.
	CartIDCookie = "cart_id"
	// CartIDKey is the fiber.Ctx locals key holding the resolved cart ID.
	CartIDKey = "cartID"
)

// CartSession resolves the caller's cart ID from the X-Cart-ID header or
// the cart_id cookie, minting a new one when neither is present. The ID
// is echoed back in both places so the same cart is reused across
// requests.
func CartSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cartID := c.Get(CartIDHeader)
		if cartID == "" {
			cartID = c.Cookies(CartIDCookie)
		}
		if cartID == "" {
			cartID = uuid.New().String()
		}

		c.Locals(CartIDKey, cartID)
		c.Set(CartIDHeader, cartID)
		c.Cookie(&fiber.Cookie{
			Name:     CartIDCookie,
			Value:    cartID,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Next()
	}
}

// CartID returns the cart ID resolved by CartSession for this request.
func CartID(c *fiber.Ctx) string {
	if id, ok := c.Locals(CartIDKey).(string); ok {
		return id
	}
	return ""
}
