package feed

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channelbot/internal/domain/catalog"
	"channelbot/internal/domain/content"
	"channelbot/internal/domain/delivery"
	"channelbot/internal/domain/purchase"
	"channelbot/internal/domain/user"
	"channelbot/internal/i18n"
	"channelbot/internal/pkg/response"
)

// Handler is the user surface: registration, the rendered feed, the private
// stream and the payment completion callback.
type Handler struct {
	users     *user.Service
	catalogs  *catalog.Service
	purchases *purchase.Service
	hub       *delivery.Hub
	pageSize  int
	logger    *zap.Logger
}

func NewHandler(users *user.Service, catalogs *catalog.Service, purchases *purchase.Service, hub *delivery.Hub, pageSize int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		users:     users,
		catalogs:  catalogs,
		purchases: purchases,
		hub:       hub,
		pageSize:  pageSize,
		logger:    logger,
	}
}

type registerRequest struct {
	ID        int64  `json:"id" binding:"required"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Register upserts a profile on first contact.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "id is required")
		return
	}

	p, err := h.users.Register(c.Request.Context(), req.ID, req.Username, req.FirstName)
	if err != nil {
		response.StoreError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"user":    p,
		"message": i18n.T("welcome", p.Lang),
	})
}

type languageRequest struct {
	Lang string `json:"lang" binding:"required"`
}

func (h *Handler) SetLanguage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "invalid user id")
		return
	}

	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "lang is required")
		return
	}

	p, err := h.users.SetLanguage(c.Request.Context(), id, req.Lang)
	switch {
	case errors.Is(err, user.ErrUnsupportedLang):
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, user.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "user not registered")
	case err != nil:
		response.StoreError(c, err)
	default:
		response.Success(c, http.StatusOK, p)
	}
}

// RenderFeed returns the caller's catalog, oldest first.
func (h *Handler) RenderFeed(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	limit := h.pageSize
	offset := 0
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 1 {
		offset = (page - 1) * limit
	}

	entries, err := h.catalogs.RenderFeed(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.StoreError(c, err)
		return
	}

	data := gin.H{"entries": entries, "total": len(entries)}
	if len(entries) == 0 {
		data["message"] = i18n.T("catalog_empty", h.users.PreferredLang(c.Request.Context(), userID))
	}
	response.Success(c, http.StatusOK, data)
}

// RenderItem returns one entry; locked entries come with the purchase notice.
func (h *Handler) RenderItem(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	entry, err := h.catalogs.RenderItem(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, content.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "UNKNOWN_CONTENT", "content does not exist or was deleted")
		return
	}
	if err != nil {
		response.StoreError(c, err)
		return
	}

	data := gin.H{"entry": entry}
	if !entry.Unlocked {
		data["message"] = i18n.T("content_locked", h.users.PreferredLang(c.Request.Context(), userID))
	}
	response.Success(c, http.StatusOK, data)
}

// AttachStream upgrades the connection to the user's private event stream.
func (h *Handler) AttachStream(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "user_id query parameter is required")
		return
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, userID); err != nil {
		_ = c.Error(err)
	}
}

type paymentCallback struct {
	UserID     int64  `json:"user_id" binding:"required"`
	ContentID  string `json:"content_id" binding:"required"`
	Amount     int64  `json:"amount"`
	PaymentRef string `json:"payment_ref" binding:"required"`
}

// PaymentCompleted consumes the provider's completion event. Duplicate
// notifications are acknowledged as success without a second grant.
func (h *Handler) PaymentCompleted(c *gin.Context) {
	var req paymentCallback
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "user_id, content_id and payment_ref are required")
		return
	}

	result, rec, err := h.purchases.GrantUnlock(c.Request.Context(), req.UserID, req.ContentID, req.Amount, req.PaymentRef)
	switch {
	case errors.Is(err, purchase.ErrUnknownContent):
		response.Error(c, http.StatusNotFound, "UNKNOWN_CONTENT", "content does not exist or was deleted")
		return
	case errors.Is(err, purchase.ErrInvalidAmount), errors.Is(err, purchase.ErrEmptyRef):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	case err != nil:
		response.StoreError(c, err)
		return
	}

	lang := h.users.PreferredLang(c.Request.Context(), req.UserID)
	msgKey := "purchase_success"
	if result == purchase.AlreadyUnlocked {
		msgKey = "already_owned"
	}

	if result == purchase.Granted {
		if entry, rerr := h.catalogs.RenderItem(c.Request.Context(), req.UserID, req.ContentID); rerr == nil {
			h.hub.PushUnlocked(req.UserID, *entry)
		} else {
			h.logger.Warn("unlocked delivery skipped",
				zap.Int64("user_id", req.UserID),
				zap.String("content_id", req.ContentID),
				zap.Error(rerr))
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":  result,
		"record":  rec,
		"message": i18n.T(msgKey, lang),
	})
}

func (h *Handler) callerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "X-User-ID header is required")
		return 0, false
	}
	return id, true
}
