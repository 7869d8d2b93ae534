package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/townboard/eventboard/apperror"
)

// Success writes the standard success envelope: {"message":"success","data":...}.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(200, gin.H{"message": "success", "data": data})
}

// Message writes a bare informational body: {"message": ...}.
func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// Error writes the standard error body: {"error": ...}.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

// ErrorFrom maps a taxonomy error to its HTTP status and writes the standard
// error body. Internal causes are logged, not echoed to the client.
func ErrorFrom(ctx *gin.Context, err error) {
	status := apperror.ToHTTPStatus(err)
	if status >= 500 && Sugar != nil {
		Sugar.Errorw("request failed", "path", ctx.Request.URL.Path, "err", err)
	}
	Error(ctx, status, apperror.UserMessage(err))
}
