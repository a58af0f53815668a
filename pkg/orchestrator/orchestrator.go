/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/logger/log"
	"github.com/storeforge/storeforge/pkg/store"
)

// PackageManager abstracts the cluster package manager operations the
// orchestrator drives.
type PackageManager interface {
	Install(ctx context.Context, name, engine string) error
	Uninstall(ctx context.Context, name string) error
	List(ctx context.Context) []store.Record
}

// Provisioner runs the in-workload bootstrap sequence.
type Provisioner interface {
	Provision(ctx context.Context, name string) error
}

// Orchestrator drives the per-store state machine:
// Provisioning -> {Ready, Failed}. Creation is accepted synchronously and
// driven to completion by a background workflow per identity; reads merge
// the cluster's authoritative view with the transient table.
type Orchestrator struct {
	pm          PackageManager
	provisioner Provisioner
	tracker     *Tracker
	storeDomain string

	// onWorkflowDone, when set, is invoked after a background workflow's
	// terminal update. Tests use it to synchronize.
	onWorkflowDone func(name string, err error)
}

func New(pm PackageManager, provisioner Provisioner, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		pm:          pm,
		provisioner: provisioner,
		tracker:     NewTracker(),
		storeDomain: cfg.StoreDomain,
	}
}

// Create validates the request, records a Provisioning transient entry and
// returns immediately; the multi-minute install/bootstrap workflow runs in
// the background. Returns a ValidationError or ConflictError before any
// cluster mutation when the request cannot be accepted.
func (o *Orchestrator) Create(ctx context.Context, name, engine string) error {
	if name == "" || engine == "" {
		return &ValidationError{Message: "Name and engine are required"}
	}
	if err := store.ValidateName(name); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if !store.ValidEngine(engine) {
		return &ValidationError{
			Message: fmt.Sprintf("Invalid engine. Supported: %s", store.SupportedEngines()[0]),
		}
	}

	// Uniqueness is checked against both sources of truth. The tracker
	// insert below is the atomic gate against concurrent creates; the
	// authoritative check catches identities the tracker no longer covers.
	for _, existing := range o.pm.List(ctx) {
		if existing.Name == name {
			return &ConflictError{Message: fmt.Sprintf("Store %q already exists", name)}
		}
	}

	if !o.tracker.CheckAndInsert(o.newTransientRecord(name, engine)) {
		return &ConflictError{Message: fmt.Sprintf("Store %q already exists", name)}
	}

	log.Infof("[CREATE] Provisioning store: %s (%s)", name, engine)
	go o.provision(name, engine)
	return nil
}

// provision drives one store's workflow to its terminal state. It runs
// detached from the request context: the caller has already been answered.
func (o *Orchestrator) provision(name, engine string) {
	ctx := context.Background()

	err := o.pm.Install(ctx, name, engine)
	if err == nil {
		log.Infof("[CREATE] Store %q deployed, starting bootstrap", name)
		err = o.provisioner.Provision(ctx, name)
	}

	if err != nil {
		log.Errorf("[CREATE] Store %q failed: %v", name, err)
		// A delete racing this workflow removes the entry; the store must
		// not resurrect as Failed afterwards.
		if !o.tracker.MarkFailed(name, err.Error()) {
			log.Infof("[CREATE] Store %q was deleted while provisioning, dropping result", name)
		}
	} else {
		log.Infof("[CREATE] Store %q fully provisioned", name)
		o.tracker.Delete(name)
	}

	if o.onWorkflowDone != nil {
		o.onWorkflowDone(name, err)
	}
}

// List returns the merged store view: the authoritative release list plus
// transient entries the cluster has not reported yet. Transient entries the
// authoritative list covers are dropped from the table (self-healing).
func (o *Orchestrator) List(ctx context.Context) []store.Record {
	merged, resolved := Reconcile(o.pm.List(ctx), o.tracker.Snapshot())
	for _, name := range resolved {
		log.Debugf("Store %q reported by package manager, clearing transient entry", name)
		o.tracker.Delete(name)
	}
	return merged
}

// Delete uninstalls the store's release and namespace. The transient entry
// is removed regardless of the uninstall outcome so a stuck entry cannot
// outlive its release; an in-flight provisioning workflow for the identity
// is not interrupted, its terminal result is dropped instead.
func (o *Orchestrator) Delete(ctx context.Context, name string) error {
	log.Infof("[DELETE] Deleting store: %s", name)
	err := o.pm.Uninstall(ctx, name)
	o.tracker.Delete(name)
	return err
}

func (o *Orchestrator) newTransientRecord(name, engine string) store.Record {
	now := time.Now().UTC().Format(time.RFC3339)
	host := fmt.Sprintf("%s.%s", name, o.storeDomain)
	return store.Record{
		Name:       name,
		Namespace:  name,
		Status:     store.StatusProvisioning,
		HelmStatus: "pending-install",
		URL:        fmt.Sprintf("http://%s", host),
		AdminURL:   fmt.Sprintf("http://%s/wp-admin", host),
		Engine:     engine,
		Created:    now,
		Updated:    now,
		Chart:      store.ChartReference,
	}
}
