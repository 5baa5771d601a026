package operator

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"channelbot/internal/domain/catalog"
	"channelbot/internal/domain/content"
	"channelbot/internal/domain/delivery"
	"channelbot/internal/domain/ingest"
	"channelbot/internal/domain/purchase"
	jwtsvc "channelbot/internal/pkg/jwt"
	"channelbot/internal/pkg/response"
)

// Handler is the operator surface: upload submission, configuration,
// publishing and purchase history.
type Handler struct {
	aggregator *ingest.Aggregator
	contents   *content.Service
	purchases  *purchase.Service
	catalogs   *catalog.Service
	hub        *delivery.Hub

	jwt      *jwtsvc.Service
	passHash string
	logger   *zap.Logger
}

func NewHandler(aggregator *ingest.Aggregator, contents *content.Service, purchases *purchase.Service, catalogs *catalog.Service, hub *delivery.Hub, jwt *jwtsvc.Service, passHash string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		aggregator: aggregator,
		contents:   contents,
		purchases:  purchases,
		catalogs:   catalogs,
		hub:        hub,
		jwt:        jwt,
		passHash:   passHash,
		logger:     logger,
	}
}

type tokenRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
}

// IssueToken exchanges the operator passphrase for a session token.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "passphrase is required")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.passHash), []byte(req.Passphrase)); err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid passphrase")
		return
	}

	sessionID := uuid.New().String()
	token, err := h.jwt.GenerateToken(sessionID)
	if err != nil {
		response.StoreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "session_id": sessionID})
}

type submitUploadRequest struct {
	FileRef   string `json:"file_ref" binding:"required"`
	MediaKind string `json:"media_kind" binding:"required"`
	GroupKey  string `json:"group_key"`
}

// SubmitUpload feeds one file reference into the aggregator. Files sharing a
// group key within the window end up in one priced unit.
func (h *Handler) SubmitUpload(c *gin.Context) {
	var req submitUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "file_ref and media_kind are required")
		return
	}

	kind := content.MediaKind(req.MediaKind)
	switch kind {
	case content.MediaPhoto, content.MediaVideo, content.MediaDocument:
	default:
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "media_kind must be photo, video or document")
		return
	}

	res, err := h.aggregator.Submit(
		c.Request.Context(),
		c.GetString("session_id"),
		content.FileSpec{FileRef: req.FileRef, MediaKind: kind},
		req.GroupKey,
	)
	if err != nil {
		response.StoreError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Pending {
		status = http.StatusAccepted
	}
	response.Success(c, status, res)
}

// CancelUpload drops a pending group before its window closes.
func (h *Handler) CancelUpload(c *gin.Context) {
	if !h.aggregator.Cancel(c.GetString("session_id"), c.Param("group_key")) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "no pending group for that key")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// ListContents is the operator catalog view: drafts and deleted included.
func (h *Handler) ListContents(c *gin.Context) {
	items, err := h.contents.ListAll(c.Request.Context())
	if err != nil {
		response.StoreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) GetContent(c *gin.Context) {
	item, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.contentError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Configure applies title/description/price fields, any subset in any order.
func (h *Handler) Configure(c *gin.Context) {
	var req content.ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
		return
	}

	item, err := h.contents.Configure(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.contentError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Publish makes an item live and announces it on every connected stream.
func (h *Handler) Publish(c *gin.Context) {
	item, err := h.contents.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.contentError(c, err)
		return
	}

	h.hub.NotifyPublished(h.catalogs.Preview(item))
	response.Success(c, http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.contents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.contentError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListPurchases shows the purchase history of one item, deleted items
// included.
func (h *Handler) ListPurchases(c *gin.Context) {
	recs, err := h.purchases.ListByContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.StoreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"purchases": recs, "total": len(recs)})
}

// Stats reports the simple counters derived from the purchase table.
func (h *Handler) Stats(c *gin.Context) {
	count, revenue, err := h.purchases.Totals(c.Request.Context())
	if err != nil {
		response.StoreError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"purchases": count, "revenue_units": revenue})
}

func (h *Handler) contentError(c *gin.Context, err error) {
	if v, ok := content.IsValidation(err); ok {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", v.Error())
		return
	}
	switch err {
	case content.ErrNotFound:
		response.Error(c, http.StatusNotFound, "UNKNOWN_CONTENT", "content does not exist or was deleted")
	case content.ErrNegativePrice:
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case content.ErrNoFiles:
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	default:
		response.StoreError(c, err)
	}
}
