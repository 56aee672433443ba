package handler

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
	"securehire/internal/usecase"
	"securehire/pkg/response"
	"securehire/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type selectContactRequest struct {
	ContactID string `json:"contact_id" validate:"required"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), middleware.UserID(c), c.Param("contactId"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	limit := utils.LimitParam(c, 50, 200)

	messages, err := h.chatUseCase.History(c.Request().Context(), middleware.UserID(c), c.Param("contactId"), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"room_id":  entity.RoomID(middleware.UserID(c), c.Param("contactId")),
		"messages": messages,
	})
}

// SelectContact subscribes the caller's websocket to the conversation with a contact.
func (h *ChatHandler) SelectContact(c echo.Context) error {
	var req selectContactRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	room, err := h.chatUseCase.SelectContact(c.Request().Context(), middleware.UserID(c), req.ContactID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"room_id": room, "state": "subscribed"})
}

func (h *ChatHandler) Unsubscribe(c echo.Context) error {
	h.chatUseCase.Unsubscribe(middleware.UserID(c))
	return response.Success(c, map[string]string{"state": "unsubscribed"})
}
