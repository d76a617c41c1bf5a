package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/matchpoint/chat-backend/internal/core/ports"
)

type ChatHandler struct {
	chat ports.ChatService
}

func NewChatHandler(chat ports.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// CreateDialog opens a private dialog between two linked users.
//
// @Summary      Create a private dialog
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      createDialogRequest  true  "Creator and peer remote ids"
// @Success      201   {object}  createDialogResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/users/dialogs [post]
func (h *ChatHandler) CreateDialog(c echo.Context) error {
	var req createDialogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dialogID, err := h.chat.CreateDialog(c.Request().Context(), req.CreatorRemoteID, req.PeerRemoteID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createDialogResponse{DialogID: dialogID})
}

// SendPush delivers a push notification to one or more remote accounts.
//
// @Summary      Send a push notification
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      sendPushRequest  true  "Push notification"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/notifications/push [post]
func (h *ChatHandler) SendPush(c echo.Context) error {
	var req sendPushRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.chat.SendPush(c.Request().Context(), req.SenderRemoteID, req.TargetRemoteIDs, req.Title, req.Content)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "push delivered"})
}
