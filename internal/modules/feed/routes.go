package feed

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/users", h.Register)
	r.PATCH("/users/:id/language", h.SetLanguage)

	r.GET("/feed", h.RenderFeed)
	r.GET("/feed/:id", h.RenderItem)
	r.GET("/ws", h.AttachStream)

	r.POST("/payments/callback", h.PaymentCompleted)
}
