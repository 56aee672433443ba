package router

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/handler"
	"securehire/internal/adapter/api/middleware"
)

// SetupChatRouter sets up the chat routes. The websocket carries the same operations
// for connected clients.
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, gateMiddleware *middleware.ProfileGateMiddleware) {
	chatHandler := handler.GetChatHandler()

	chats := protectedGroup(e, "/v1/chats", authMiddleware)
	chats.GET("/:contactId/messages", chatHandler.GetMessages)
	chats.POST("/unsubscribe", chatHandler.Unsubscribe)

	// Starting or continuing a conversation requires a complete profile.
	chats.POST("/select", chatHandler.SelectContact, gateMiddleware.RequireCompleteProfile)
	chats.POST("/:contactId/messages", chatHandler.SendMessage, gateMiddleware.RequireCompleteProfile)
}
