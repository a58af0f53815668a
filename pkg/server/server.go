/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/storeforge/storeforge/pkg/api"
	"github.com/storeforge/storeforge/pkg/bootstrap"
	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/executor"
	"github.com/storeforge/storeforge/pkg/helm"
	"github.com/storeforge/storeforge/pkg/kube"
	"github.com/storeforge/storeforge/pkg/logger/log"
	"github.com/storeforge/storeforge/pkg/orchestrator"
)

// InitServer wires the provisioner together and serves the API until the
// process exits.
func InitServer(_ context.Context) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	if err := cfg.VerifyChartPath(); err != nil {
		// Creation will fail until the chart is mounted; keep serving reads.
		log.Errorf("CRITICAL: %v", err)
	} else {
		log.Infof("Chart path verified: %s", cfg.ChartPath)
	}
	log.Infof("Using helm at %q, kubectl at %q", cfg.HelmBin, cfg.KubectlBin)

	runner := executor.New()
	helmClient := helm.NewClient(runner, cfg)
	kubeClient := kube.NewClient(runner, cfg)
	sequencer := bootstrap.NewSequencer(kubeClient, cfg)
	orch := orchestrator.New(helmClient, sequencer, cfg)

	engine := gin.New()
	engine.Use(gin.Recovery())
	api.InitStoreRouters(engine, api.NewHandler(orch))

	log.Infof("StoreForge backend listening on port %d", cfg.Port)
	return engine.Run(fmt.Sprintf(":%d", cfg.Port))
}
