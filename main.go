package main

import (
	"time"

	"github.com/townboard/eventboard/config"
	"github.com/townboard/eventboard/media"
	"github.com/townboard/eventboard/models"
	"github.com/townboard/eventboard/routes"
	"github.com/townboard/eventboard/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Event{}, &models.Setting{})
	if err := config.SeedAdminPassword(db, cfg.DefaultAdminPassword); err != nil {
		utils.Sugar.Fatalf("failed to seed admin password: %v", err)
	}

	store, err := media.NewStore(cfg.MediaRoot, utils.Sugar)
	if err != nil {
		utils.Sugar.Fatalf("failed to open media root: %v", err)
	}
	// Best-effort cleanup of empty directories left by interrupted uploads
	store.StartOrphanSweeper(10*time.Minute, time.Hour)

	r := routes.SetupRouter(db, store)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
