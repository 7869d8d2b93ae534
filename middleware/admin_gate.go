package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townboard/eventboard/models"
	"github.com/townboard/eventboard/utils"
)

// AdminGate protects mutating endpoints behind the shared admin password. The
// password travels in the request body: a "password" field for form and
// multipart requests, or a top-level "password" key for JSON bodies. JSON
// bodies are re-buffered so downstream handlers can still bind them.
func AdminGate(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		provided, ok := extractPassword(ctx)
		if !ok || provided == "" {
			utils.Error(ctx, http.StatusUnauthorized, "Password is required")
			ctx.Abort()
			return
		}

		hash, err := models.GetSetting(db, models.AdminPasswordKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Error(ctx, http.StatusUnauthorized, "Unauthorized: Invalid password")
			} else {
				utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
			}
			ctx.Abort()
			return
		}

		if !utils.CheckPassword(hash, provided) {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized: Invalid password")
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func extractPassword(ctx *gin.Context) (string, bool) {
	contentType := ctx.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") ||
		contentType == "application/x-www-form-urlencoded" {
		return ctx.PostForm("password"), true
	}

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return "", false
	}
	ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	return payload.Password, true
}
