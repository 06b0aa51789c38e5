package azurenuke

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
)

type service struct {
	mu         sync.Mutex
	running    bool
	statusPath string
	logger     *slog.Logger
}

// NukeService runs the bulk-deletion sweep over every resource group
// visible to an account. Single-flight: while a sweep is active,
// Start returns the persisted in-progress status instead of starting
// another. The status snapshot is rewritten after every transition so
// a crash leaves an accurate record; recovery is observation-only.
type NukeService interface {
	// Start kicks off a background sweep using the given account's
	// API. Returns the current status and whether a new sweep was
	// actually started.
	Start(ctx context.Context, api azureapi.AzureAPI) (model.NukeStatus, bool, error)

	// Status reads the persisted snapshot.
	Status() (model.NukeStatus, error)
}
