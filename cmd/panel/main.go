package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	azurenuke "github.com/yuanzhangdck/azure-glass/service/azure/nuke"
	"github.com/yuanzhangdck/azure-glass/service/clientcache"
	"github.com/yuanzhangdck/azure-glass/service/proxybind"
	"github.com/yuanzhangdck/azure-glass/service/store"
	"github.com/yuanzhangdck/azure-glass/utils"
)

const version = "1.0.0"

func main() {
	utils.DrawBanner(version)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := LoadConfig()

	storeService, err := store.NewService(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open data dir", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	proxyService := proxybind.NewService()
	cacheService := clientcache.NewService(proxyService)
	nukeService := azurenuke.NewService(filepath.Clean(cfg.DataDir), logger)

	server := NewServer(storeService, proxyService, cacheService, nukeService, logger)

	addr := ":" + cfg.Port
	logger.Info("panel listening", "addr", addr, "dataDir", cfg.DataDir)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
