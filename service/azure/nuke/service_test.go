package azurenuke

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanzhangdck/azure-glass/model"
	"github.com/yuanzhangdck/azure-glass/service/azure/api/fakes"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	return NewService(t.TempDir(), slog.New(slog.DiscardHandler))
}

func seedGroups(fake *fakes.Fake, names ...string) {
	for _, name := range names {
		fake.ResourceGroups[name] = model.ResourceGroup{Name: name, Location: "eastus"}
	}
}

func waitForFinish(t *testing.T, svc *service) model.NukeStatus {
	t.Helper()
	var status model.NukeStatus
	require.Eventually(t, func() bool {
		var err error
		status, err = svc.Status()
		return err == nil && !status.Running && status.FinishedAt != ""
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestStart_SweepsAllGroups(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	seedGroups(fake, "rg-a", "rg-b", "rg-c")
	svc := newTestService(t)

	status, started, err := svc.Start(context.Background(), fake)
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, status.Running)

	final := waitForFinish(t, svc)
	assert.Equal(t, 3, final.Deleted)
	assert.Empty(t, final.Error)
	assert.NotEmpty(t, final.LastRG)
	assert.Len(t, fake.DeletedGroups, 3)
}

func TestStart_SecondCallWhileRunningReturnsStatus(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	seedGroups(fake, "rg-a", "rg-b")
	gate := make(chan struct{})
	fake.OnBeginDeleteResourceGroup = func(string) error {
		<-gate
		return nil
	}
	svc := newTestService(t)

	_, started, err := svc.Start(context.Background(), fake)
	require.NoError(t, err)
	require.True(t, started)

	// While the first sweep is blocked, a second request observes the
	// in-progress status and must not start another sweep.
	status, started, err := svc.Start(context.Background(), fake)
	require.NoError(t, err)
	assert.False(t, started)
	assert.True(t, status.Running)

	close(gate)
	final := waitForFinish(t, svc)
	assert.Equal(t, 2, final.Deleted, "the counter must not double-increment")
}

func TestRun_ErrorHaltsAndIsRecorded(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	seedGroups(fake, "rg-a", "rg-b")
	calls := 0
	fake.OnBeginDeleteResourceGroup = func(string) error {
		calls++
		if calls == 2 {
			return errors.New("deletion forbidden")
		}
		return nil
	}
	svc := newTestService(t)

	_, started, err := svc.Start(context.Background(), fake)
	require.NoError(t, err)
	require.True(t, started)

	final := waitForFinish(t, svc)
	assert.Equal(t, 1, final.Deleted)
	assert.Contains(t, final.Error, "deletion forbidden")
	assert.False(t, final.Running)
}

func TestStart_CanRunAgainAfterFinish(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	seedGroups(fake, "rg-a")
	svc := newTestService(t)

	_, started, err := svc.Start(context.Background(), fake)
	require.NoError(t, err)
	require.True(t, started)
	waitForFinish(t, svc)

	// A fresh invocation re-enumerates; nothing left to delete.
	_, started, err = svc.Start(context.Background(), fake)
	require.NoError(t, err)
	assert.True(t, started)
	final := waitForFinish(t, svc)
	assert.Equal(t, 0, final.Deleted)
}

func TestStatus_DefaultsToIdle(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	status, err := svc.Status()
	require.NoError(t, err)
	assert.False(t, status.Running)
}
