package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townboard/eventboard/models"
	"github.com/townboard/eventboard/utils"
)

// AdminController rotates the shared admin password.
type AdminController struct {
	db *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

// ChangePassword verifies the current password and stores the hash of the new
// one.
func (a *AdminController) ChangePassword(ctx *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if len(req.NewPassword) < 6 {
		utils.Error(ctx, http.StatusBadRequest, "New password must be at least 6 characters long")
		return
	}

	hash, err := models.GetSetting(a.db, models.AdminPasswordKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, "Unauthorized: Invalid current password")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	if !utils.CheckPassword(hash, req.CurrentPassword) {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized: Invalid current password")
		return
	}

	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Failed to update password")
		return
	}
	if err := models.SetSetting(a.db, models.AdminPasswordKey, newHash); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Failed to update password")
		return
	}

	utils.Message(ctx, http.StatusOK, "Password changed successfully")
}
