/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/store"
)

type fakePackageManager struct {
	mu         sync.Mutex
	releases   []store.Record
	installs   []string
	uninstalls []string

	installErr   error
	uninstallErr error
	// installGate, when set, blocks Install until the gate closes.
	installGate chan struct{}
}

func (f *fakePackageManager) Install(ctx context.Context, name, engine string) error {
	if f.installGate != nil {
		<-f.installGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, name)
	return f.installErr
}

func (f *fakePackageManager) Uninstall(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uninstalls = append(f.uninstalls, name)
	return f.uninstallErr
}

func (f *fakePackageManager) List(ctx context.Context) []store.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Record{}, f.releases...)
}

type fakeProvisioner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeProvisioner) Provision(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeProvisioner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// newTestOrchestrator wires the fakes and a done channel that receives one
// value per completed background workflow.
func newTestOrchestrator(pm *fakePackageManager, p *fakeProvisioner) (*Orchestrator, chan error) {
	o := New(pm, p, &config.Config{StoreDomain: "local"})
	done := make(chan error, 8)
	o.onWorkflowDone = func(name string, err error) { done <- err }
	return o, done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("workflow did not finish")
		return nil
	}
}

func TestCreateValidation(t *testing.T) {
	testCases := []struct {
		name    string
		store   string
		engine  string
		message string
	}{
		{"missing name", "", "woocommerce", "Name and engine are required"},
		{"missing engine", "my-shop", "", "Name and engine are required"},
		{"invalid name", "My Shop!!", "woocommerce", "Invalid name. Suggested: my-shop"},
		{"short name", "sh", "woocommerce", "Store name must be at least 3 characters (letters, numbers, hyphens)"},
		{"bad engine", "my-shop", "magento", "Invalid engine. Supported: woocommerce"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pm := &fakePackageManager{}
			o, _ := newTestOrchestrator(pm, &fakeProvisioner{})

			err := o.Create(context.Background(), tc.store, tc.engine)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.message, validationErr.Message)

			// Rejected requests never touch the cluster.
			assert.Empty(t, pm.installs)
		})
	}
}

func TestCreateAcceptsAndTracksProvisioning(t *testing.T) {
	pm := &fakePackageManager{installGate: make(chan struct{})}
	o, done := newTestOrchestrator(pm, &fakeProvisioner{})

	require.NoError(t, o.Create(context.Background(), "my-shop", "woocommerce"))

	// While the workflow is in flight the merged view carries the transient
	// entry.
	records := o.List(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, "my-shop", records[0].Name)
	assert.Equal(t, store.StatusProvisioning, records[0].Status)
	assert.Equal(t, "pending-install", records[0].HelmStatus)
	assert.Equal(t, "http://my-shop.local", records[0].URL)
	assert.Equal(t, "http://my-shop.local/wp-admin", records[0].AdminURL)
	assert.Equal(t, store.ChartReference, records[0].Chart)

	close(pm.installGate)
	require.NoError(t, waitDone(t, done))
}

func TestCreateDuplicateTransient(t *testing.T) {
	pm := &fakePackageManager{installGate: make(chan struct{})}
	o, done := newTestOrchestrator(pm, &fakeProvisioner{})

	require.NoError(t, o.Create(context.Background(), "my-shop", "woocommerce"))

	err := o.Create(context.Background(), "my-shop", "woocommerce")
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, `Store "my-shop" already exists`, conflictErr.Message)

	close(pm.installGate)
	require.NoError(t, waitDone(t, done))

	// Only the first request started a workflow.
	assert.Equal(t, []string{"my-shop"}, pm.installs)
}

func TestCreateDuplicateAuthoritative(t *testing.T) {
	pm := &fakePackageManager{releases: []store.Record{{Name: "my-shop", Status: store.StatusReady}}}
	o, _ := newTestOrchestrator(pm, &fakeProvisioner{})

	err := o.Create(context.Background(), "my-shop", "woocommerce")
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Empty(t, pm.installs)
}

func TestWorkflowInstallFailure(t *testing.T) {
	pm := &fakePackageManager{installErr: errors.New("helm install failed: chart not found")}
	provisioner := &fakeProvisioner{}
	o, done := newTestOrchestrator(pm, provisioner)

	require.NoError(t, o.Create(context.Background(), "my-shop", "woocommerce"))
	require.Error(t, waitDone(t, done))

	records := o.List(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, store.StatusFailed, records[0].Status)
	assert.Equal(t, "failed", records[0].HelmStatus)
	assert.Contains(t, records[0].Error, "chart not found")

	// Bootstrap never runs when the install failed.
	assert.Equal(t, 0, provisioner.callCount())
}

func TestWorkflowBootstrapFailure(t *testing.T) {
	pm := &fakePackageManager{}
	provisioner := &fakeProvisioner{err: errors.New("wait-database: database never became ready after 20 attempts: probe failed")}
	o, done := newTestOrchestrator(pm, provisioner)

	require.NoError(t, o.Create(context.Background(), "my-shop", "woocommerce"))
	require.Error(t, waitDone(t, done))

	records := o.List(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, store.StatusFailed, records[0].Status)
	assert.Contains(t, records[0].Error, "wait-database")
}

func TestWorkflowSuccessClearsTransient(t *testing.T) {
	pm := &fakePackageManager{}
	provisioner := &fakeProvisioner{}
	o, done := newTestOrchestrator(pm, provisioner)

	require.NoError(t, o.Create(context.Background(), "my-shop", "woocommerce"))
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, []string{"my-shop"}, pm.installs)
	assert.Equal(t, 1, provisioner.callCount())

	// The entry is gone; visibility now depends on the authoritative list.
	assert.False(t, o.tracker.Has("my-shop"))
	assert.Empty(t, o.List(context.Background()))

	pm.releases = []store.Record{{Name: "my-shop", Status: store.StatusReady, HelmStatus: "deployed"}}
	records := o.List(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, store.StatusReady, records[0].Status)
}

func TestListReconcilesResolvedEntries(t *testing.T) {
	pm := &fakePackageManager{installGate: make(chan struct{})}
	o, done := newTestOrchestrator(pm, &fakeProvisioner{})

	require.NoError(t, o.Create(context.Background(), "my-shop", "woocommerce"))

	// The package manager starts reporting the release while the workflow
	// is still running; the authoritative row wins and the transient entry
	// is dropped.
	pm.mu.Lock()
	pm.releases = []store.Record{{Name: "my-shop", Status: store.StatusProvisioning, HelmStatus: "pending-install", Chart: "universal-store-0.2.0"}}
	pm.mu.Unlock()

	records := o.List(context.Background())
	require.Len(t, records, 1)
	assert.Equal(t, "universal-store-0.2.0", records[0].Chart)
	assert.False(t, o.tracker.Has("my-shop"))

	close(pm.installGate)
	require.NoError(t, waitDone(t, done))
}

func TestDelete(t *testing.T) {
	pm := &fakePackageManager{}
	o, _ := newTestOrchestrator(pm, &fakeProvisioner{})

	require.NoError(t, o.Delete(context.Background(), "my-shop"))
	assert.Equal(t, []string{"my-shop"}, pm.uninstalls)
}

func TestDeleteClearsTrackerDespiteUninstallFailure(t *testing.T) {
	pm := &fakePackageManager{uninstallErr: errors.New("namespace deletion failed: timeout")}
	o, _ := newTestOrchestrator(pm, &fakeProvisioner{})
	o.tracker.CheckAndInsert(store.Record{Name: "my-shop", Status: store.StatusFailed})

	err := o.Delete(context.Background(), "my-shop")
	require.Error(t, err)
	assert.False(t, o.tracker.Has("my-shop"))
}

func TestDeleteWhileProvisioningDropsResult(t *testing.T) {
	pm := &fakePackageManager{installGate: make(chan struct{}), installErr: errors.New("install interrupted")}
	o, done := newTestOrchestrator(pm, &fakeProvisioner{})

	require.NoError(t, o.Create(context.Background(), "my-shop", "woocommerce"))
	require.NoError(t, o.Delete(context.Background(), "my-shop"))

	// The in-flight workflow fails after the delete; the store must not
	// resurrect as Failed.
	close(pm.installGate)
	require.Error(t, waitDone(t, done))

	assert.False(t, o.tracker.Has("my-shop"))
	assert.Empty(t, o.List(context.Background()))
}
