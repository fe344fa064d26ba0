package http

import "github.com/labstack/echo/v4"

// Handler is implemented by API handlers that mount routes on the server.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
