package operator

import "github.com/gin-gonic/gin"

// RegisterAuthRoutes mounts the public token exchange.
func RegisterAuthRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/auth/token", h.IssueToken)
}

// RegisterRoutes mounts the protected operator surface.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	op := r.Group("/operator")
	{
		op.POST("/uploads", h.SubmitUpload)
		op.DELETE("/uploads/:group_key", h.CancelUpload)

		op.GET("/contents", h.ListContents)
		op.GET("/contents/:id", h.GetContent)
		op.PATCH("/contents/:id", h.Configure)
		op.POST("/contents/:id/publish", h.Publish)
		op.DELETE("/contents/:id", h.Delete)
		op.GET("/contents/:id/purchases", h.ListPurchases)

		op.GET("/stats", h.Stats)
	}
}
