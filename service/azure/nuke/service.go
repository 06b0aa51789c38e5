package azurenuke

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
)

const statusFile = "nuke-status.json"

func NewService(dataDir string, logger *slog.Logger) *service {
	return &service{
		statusPath: filepath.Join(dataDir, statusFile),
		logger:     logger,
	}
}

// Start implements azurenuke.NukeService.
func (s *service) Start(ctx context.Context, api azureapi.AzureAPI) (model.NukeStatus, bool, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		status, err := s.Status()
		return status, false, err
	}
	s.running = true
	s.mu.Unlock()

	status := model.NukeStatus{
		Running:   true,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.writeStatus(status); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return model.NukeStatus{}, false, err
	}

	// The sweep outlives the request that triggered it.
	go s.run(context.WithoutCancel(ctx), api, status)

	return status, true, nil
}

func (s *service) run(ctx context.Context, api azureapi.AzureAPI, status model.NukeStatus) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		status.Running = false
		status.FinishedAt = time.Now().UTC().Format(time.RFC3339)
		if err := s.writeStatus(status); err != nil {
			s.logger.Error("failed to persist final nuke status", "error", err)
		}
		s.logger.Info("nuke sweep finished", "deleted", status.Deleted, "error", status.Error)
	}()

	groups, err := api.ListResourceGroups(ctx)
	if err != nil {
		status.Error = err.Error()
		return
	}

	for _, rg := range groups {
		status.LastRG = rg.Name
		if err := s.writeStatus(status); err != nil {
			s.logger.Error("failed to persist nuke status", "error", err)
		}

		s.logger.Info("nuke: deleting resource group", "name", rg.Name)
		if err := api.BeginDeleteResourceGroup(ctx, rg.Name); err != nil {
			status.Error = err.Error()
			s.logger.Error("nuke: deletion failed", "name", rg.Name, "error", err)
			return
		}

		status.Deleted++
		if err := s.writeStatus(status); err != nil {
			s.logger.Error("failed to persist nuke status", "error", err)
		}
	}
}

// Status implements azurenuke.NukeService, defaulting to an idle
// record when no snapshot exists or it is unreadable.
func (s *service) Status() (model.NukeStatus, error) {
	data, err := os.ReadFile(s.statusPath)
	if os.IsNotExist(err) {
		return model.NukeStatus{Running: false}, nil
	}
	if err != nil {
		return model.NukeStatus{}, fmt.Errorf("failed to read nuke status: %w", err)
	}

	var status model.NukeStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return model.NukeStatus{Running: false}, nil
	}
	return status, nil
}

func (s *service) writeStatus(status model.NukeStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode nuke status: %w", err)
	}
	if err := os.WriteFile(s.statusPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write nuke status: %w", err)
	}
	return nil
}
