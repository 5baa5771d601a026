package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// StoreError reports a persistence failure. The operation aborted without
// partial state, so callers may retry the whole action.
func StoreError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		Error(c, http.StatusNotFound, "NOT_FOUND", "record not found")
		return
	}
	Error(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "storage is temporarily unavailable, retry the action")
}
