/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// DefaultPort is the API listen port when PORT is not set.
	DefaultPort = 3001

	// DefaultChartPath is the packaged workload template shipped with the
	// backend image.
	DefaultChartPath = "./charts/universal-store"

	// DefaultStoreDomain is the suffix appended to store names to form the
	// public ingress host.
	DefaultStoreDomain = "local"

	wellKnownToolDir = "/usr/local/bin"
)

// Config holds the provisioner configuration, loaded once at startup.
type Config struct {
	Port        int
	ChartPath   string
	StoreDomain string
	HelmTimeout time.Duration

	// HelmBin and KubectlBin are the resolved executable locations.
	HelmBin    string
	KubectlBin string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	port := DefaultPort
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		port = p
	}

	chartPath := os.Getenv("CHART_PATH")
	if chartPath == "" {
		chartPath = DefaultChartPath
	}
	chartPath, err := filepath.Abs(chartPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chart path: %w", err)
	}

	storeDomain := os.Getenv("STORE_DOMAIN")
	if storeDomain == "" {
		storeDomain = DefaultStoreDomain
	}

	helmTimeout := 11 * time.Minute
	if timeoutStr := os.Getenv("HELM_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil {
			helmTimeout = d
		}
	}

	return &Config{
		Port:        port,
		ChartPath:   chartPath,
		StoreDomain: storeDomain,
		HelmTimeout: helmTimeout,
		HelmBin:     ResolveTool("helm"),
		KubectlBin:  ResolveTool("kubectl"),
	}, nil
}

// ResolveTool resolves the executable path for an external tool.
// Resolution order: STOREFORGE_TOOLS_ROOT, the well-known platform install
// location, then the bare name (ambient search path).
func ResolveTool(name string) string {
	if root := os.Getenv("STOREFORGE_TOOLS_ROOT"); root != "" {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	candidate := filepath.Join(wellKnownToolDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return name
}

// VerifyChartPath checks that the packaged workload template exists.
func (c *Config) VerifyChartPath() error {
	if _, err := os.Stat(c.ChartPath); err != nil {
		return fmt.Errorf("chart path not found at %s: %w", c.ChartPath, err)
	}
	return nil
}
