package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIAuth validates the Token header against the configured API key. The
// lifecycle endpoints are called by the commerce platform, never directly
// by shoppers.
func APIAuth(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}
			token := c.Request().Header.Get("Token")
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status": false,
					"msg":    "Token is required",
				})
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) == 1 {
				return next(c)
			}
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"status": false,
				"msg":    "Invalid token",
			})
		}
	}
}

// CORS configures CORS headers.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Access-Control-Allow-Origin", "*")
			c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Token, Authorization")
			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
