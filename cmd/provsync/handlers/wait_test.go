package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/provsync/provsync/internal/config"
	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
)

type fakeInspector struct {
	state string
	got   string
}

func (f *fakeInspector) WorkerState(_ context.Context, name string) (string, error) {
	f.got = name
	return f.state, nil
}

func fastPolling(t *testing.T) {
	t.Helper()
	fastBackoff(t)
	t.Setenv("PROVSYNC_POLL_INTERVAL", "1ms")
	t.Setenv("PROVSYNC_WAIT_CEILING", "50ms")
}

func TestWait_TerminalStatusReturnsClean(t *testing.T) {
	stubTokenSource(t, "tok")
	fastPolling(t)
	store := docstore.NewMemoryClient()
	stubStoreClient(t, store)
	path := writeConfig(t, "")

	ctx := context.Background()
	require.NoError(t, store.PatchDocument(ctx, docstore.Ref{}, coordinate.StatusDocument,
		map[string]string{coordinate.StatusFieldKey(time.Now()): config.DefaultTerminalStatus}))

	require.NoError(t, Wait(ctx, WaitOptions{ConfigPath: path}))
}

func TestWait_CustomTerminalStatus(t *testing.T) {
	stubTokenSource(t, "tok")
	fastPolling(t)
	store := docstore.NewMemoryClient()
	stubStoreClient(t, store)
	path := writeConfig(t, "terminal_status: All done\n")

	ctx := context.Background()
	require.NoError(t, store.PatchDocument(ctx, docstore.Ref{}, coordinate.StatusDocument,
		map[string]string{coordinate.StatusFieldKey(time.Now()): "All done"}))

	require.NoError(t, Wait(ctx, WaitOptions{ConfigPath: path}))
}

func TestWait_TimeoutCarriesCoordinates(t *testing.T) {
	stubTokenSource(t, "tok")
	fastPolling(t)
	store := docstore.NewMemoryClient()
	stubStoreClient(t, store)
	path := writeConfig(t, "")

	ctx := context.Background()
	require.NoError(t, store.PatchDocument(ctx, docstore.Ref{}, coordinate.StatusDocument,
		map[string]string{coordinate.StatusFieldKey(time.Now()): "Forming quorum"}))

	err := Wait(ctx, WaitOptions{ConfigPath: path})

	var timeout *coordinate.TimeoutError
	require.ErrorAs(t, err, &timeout)
	require.Equal(t, "Forming quorum", timeout.LastStatus)
	require.Equal(t, "deploy-worker-1", timeout.WorkerInstance)
	require.ErrorContains(t, err, "deploy-1")
	require.ErrorContains(t, err, "deploy-worker-1")
}

func TestWait_TimeoutEnrichedWithWorkerState(t *testing.T) {
	stubTokenSource(t, "tok")
	fastPolling(t)
	t.Setenv("HCLOUD_TOKEN", "cloud-tok")
	store := docstore.NewMemoryClient()
	stubStoreClient(t, store)
	path := writeConfig(t, "")

	inspector := &fakeInspector{state: "off"}
	origInspector := newWorkerInspector
	newWorkerInspector = func(_ string) workerInspector { return inspector }
	t.Cleanup(func() { newWorkerInspector = origInspector })

	ctx := context.Background()
	require.NoError(t, store.PatchDocument(ctx, docstore.Ref{}, coordinate.StatusDocument,
		map[string]string{coordinate.StatusFieldKey(time.Now()): "Forming quorum"}))

	err := Wait(ctx, WaitOptions{ConfigPath: path})

	var timeout *coordinate.TimeoutError
	require.ErrorAs(t, err, &timeout)
	require.Equal(t, "off", timeout.WorkerState)
	require.Equal(t, "deploy-worker-1", inspector.got)
	require.ErrorContains(t, err, "instance state: off")
}

func TestWait_ContextCancelStops(t *testing.T) {
	stubTokenSource(t, "tok")
	fastBackoff(t)
	t.Setenv("PROVSYNC_POLL_INTERVAL", "10ms")
	t.Setenv("PROVSYNC_WAIT_CEILING", "1h")
	stubStoreClient(t, docstore.NewMemoryClient())
	path := writeConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := Wait(ctx, WaitOptions{ConfigPath: path})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
