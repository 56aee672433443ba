package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
	"securehire/internal/usecase"
	"securehire/pkg/logger"
	"securehire/pkg/response"
)

type ContactHandler struct {
	sessions *usecase.ContactSessions
	notifier *usecase.Notifier
}

func NewContactHandler(sessions *usecase.ContactSessions, notifier *usecase.Notifier) *ContactHandler {
	return &ContactHandler{
		sessions: sessions,
		notifier: notifier,
	}
}

type scrollRequest struct {
	ScrollTop    float64 `json:"scroll_top" validate:"gte=0"`
	ScrollHeight float64 `json:"scroll_height" validate:"gte=0"`
	ClientHeight float64 `json:"client_height" validate:"gte=0"`
}

type contactListResponse struct {
	usecase.ContactSnapshot
	Batch *usecase.BatchResult `json:"batch,omitempty"`
}

// ListContacts returns the sidebar as it stands, opening a session on first use. Before
// the first page a session with cached contacts answers from the cache and revalidates in
// the background, pushing the live page over the websocket. Without a cache the first
// page is loaded before answering.
func (h *ContactHandler) ListContacts(c echo.Context) error {
	uid := middleware.UserID(c)
	loader := h.sessions.Open(uid, middleware.UserRole(c))

	snap := loader.Snapshot()
	if snap.Cursor != "" || !snap.HasMore || snap.Error != "" || snap.Loading {
		return response.Success(c, contactListResponse{ContactSnapshot: snap})
	}

	if len(snap.Contacts) > 0 {
		ctx := context.WithoutCancel(c.Request().Context())
		go func() {
			res, err := loader.FetchNextBatch(ctx)
			if err != nil {
				if loader.Closed() {
					return
				}
				h.notifier.Failure(uid, err)
				return
			}
			if !res.Skipped {
				h.notifier.ContactsAppended(uid, res)
			}
		}()
		return response.Success(c, contactListResponse{ContactSnapshot: snap})
	}

	res, err := loader.FetchNextBatch(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, contactListResponse{ContactSnapshot: loader.Snapshot(), Batch: res})
}

// NextBatch fetches the next page explicitly.
func (h *ContactHandler) NextBatch(c echo.Context) error {
	loader := h.sessions.Open(middleware.UserID(c), middleware.UserRole(c))

	res, err := loader.FetchNextBatch(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, res)
}

// Scroll reports the list container's scroll position; the next page is fetched when
// the user is near the bottom.
func (h *ContactHandler) Scroll(c echo.Context) error {
	var req scrollRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	loader := h.sessions.Open(middleware.UserID(c), middleware.UserRole(c))
	res, err := loader.OnScroll(c.Request().Context(), usecase.ScrollPosition{
		ScrollTop:    req.ScrollTop,
		ScrollHeight: req.ScrollHeight,
		ClientHeight: req.ClientHeight,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"fetched": res != nil,
		"batch":   res,
	})
}

// ResetSession starts the list over from the first page.
func (h *ContactHandler) ResetSession(c echo.Context) error {
	uid := middleware.UserID(c)
	h.sessions.Reset(uid, middleware.UserRole(c))
	logger.Debug("Contact session reset for %s", uid)
	return response.Success(c, map[string]string{"status": "reset"})
}
