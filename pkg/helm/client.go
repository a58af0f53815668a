/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package helm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/executor"
	"github.com/storeforge/storeforge/pkg/logger/log"
	"github.com/storeforge/storeforge/pkg/store"
)

const (
	uninstallTimeout = 2 * time.Minute
	listTimeout      = 30 * time.Second
)

// Client wraps helm CLI operations for the store chart. All invocations use
// structured argument vectors; user-supplied identities never pass through a
// shell.
type Client struct {
	runner      executor.Runner
	helmBin     string
	kubectlBin  string
	chartPath   string
	storeDomain string
	timeout     time.Duration
}

// NewClient creates a Client from the resolved configuration.
func NewClient(runner executor.Runner, cfg *config.Config) *Client {
	return &Client{
		runner:      runner,
		helmBin:     cfg.HelmBin,
		kubectlBin:  cfg.KubectlBin,
		chartPath:   cfg.ChartPath,
		storeDomain: cfg.StoreDomain,
		timeout:     cfg.HelmTimeout,
	}
}

// Install installs (or upgrades) the store release for the given identity.
// The identity is used as both the release name and the namespace, creating
// the namespace if absent.
func (c *Client) Install(ctx context.Context, name, engine string) error {
	values := map[string]interface{}{
		"store": map[string]interface{}{
			"name":   name,
			"engine": engine,
		},
		"ingress": map[string]interface{}{
			"host": fmt.Sprintf("%s.%s", name, c.storeDomain),
		},
	}

	valuesFile, err := writeValuesTemp(values)
	if err != nil {
		return err
	}
	defer os.Remove(valuesFile)

	args := []string{
		"upgrade", "--install", name, c.chartPath,
		"--namespace", name,
		"--create-namespace",
		"--values", valuesFile,
		"--timeout", c.timeout.String(),
	}

	log.Infof("Executing: helm %s", strings.Join(args, " "))

	result, err := c.runner.Run(ctx, c.timeout, c.helmBin, args...)
	if err != nil {
		log.Errorf("Helm install failed for %q: %s", name, result.Stderr)
		return fmt.Errorf("helm install failed: %s", diagnostic(result, err))
	}

	log.Infof("Helm install completed for %q", name)
	return nil
}

// Uninstall removes the store release and then deletes its namespace to
// reclaim resources the release did not own. Namespace deletion tolerates
// "not found" so delete stays idempotent. Either sub-operation failing is
// reported as an overall failure, but the other is still attempted.
func (c *Client) Uninstall(ctx context.Context, name string) error {
	var failures []string

	result, err := c.runner.Run(ctx, uninstallTimeout, c.helmBin,
		"uninstall", name, "--namespace", name)
	if err != nil {
		if isNotFound(result.Stderr) {
			log.Infof("Release %q not found, nothing to uninstall", name)
		} else {
			log.Errorf("Helm uninstall failed for %q: %s", name, result.Stderr)
			failures = append(failures, fmt.Sprintf("helm uninstall failed: %s", diagnostic(result, err)))
		}
	}

	result, err = c.runner.Run(ctx, uninstallTimeout, c.kubectlBin,
		"delete", "namespace", name, "--ignore-not-found")
	if err != nil {
		log.Errorf("Namespace deletion failed for %q: %s", name, result.Stderr)
		failures = append(failures, fmt.Sprintf("namespace deletion failed: %s", diagnostic(result, err)))
	}

	if len(failures) > 0 {
		return fmt.Errorf("%s", strings.Join(failures, "; "))
	}
	return nil
}

// releaseInfo is the subset of `helm list -o json` output the provisioner
// consumes.
type releaseInfo struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Status     string `json:"status"`
	Updated    string `json:"updated"`
	Chart      string `json:"chart"`
	AppVersion string `json:"app_version"`
}

// List queries all releases across all namespaces and maps those belonging
// to the store chart family into store records. Query failures degrade to an
// empty list: read paths must never error on a transient cluster problem.
func (c *Client) List(ctx context.Context) []store.Record {
	result, err := c.runner.Run(ctx, listTimeout, c.helmBin,
		"list", "--all-namespaces", "-o", "json")
	if err != nil {
		log.Warnf("Helm list failed, returning empty store list: %s", diagnostic(result, err))
		return []store.Record{}
	}

	var releases []releaseInfo
	if err := json.Unmarshal([]byte(result.Stdout), &releases); err != nil {
		log.Warnf("Failed to parse helm list output: %v", err)
		return []store.Record{}
	}

	records := make([]store.Record, 0, len(releases))
	for _, r := range releases {
		if !strings.HasPrefix(r.Chart, store.ChartName+"-") {
			continue
		}
		records = append(records, c.toRecord(r))
	}
	return records
}

func (c *Client) toRecord(r releaseInfo) store.Record {
	host := fmt.Sprintf("%s.%s", r.Name, c.storeDomain)
	updated := NormalizeTimestamp(r.Updated)
	return store.Record{
		Name:       r.Name,
		Namespace:  r.Namespace,
		Status:     store.MapHelmStatus(r.Status),
		HelmStatus: r.Status,
		URL:        fmt.Sprintf("http://%s", host),
		AdminURL:   fmt.Sprintf("http://%s/wp-admin", host),
		Engine:     store.EngineWooCommerce,
		Created:    updated,
		Updated:    updated,
		Chart:      r.Chart,
	}
}

// NormalizeTimestamp converts helm's verbose timestamp format
// ("2024-01-15 10:30:45.123456789 +0000 UTC") into a canonical date-time
// ("2024-01-15T10:30:45"), dropping sub-second and timezone noise.
func NormalizeTimestamp(ts string) string {
	if dot := strings.Index(ts, "."); dot != -1 {
		ts = ts[:dot]
	}
	// Without sub-seconds the timezone follows the second space.
	parts := strings.SplitN(ts, " ", 3)
	if len(parts) >= 2 {
		ts = parts[0] + "T" + parts[1]
	}
	return ts
}

func writeValuesTemp(values map[string]interface{}) (string, error) {
	f, err := os.CreateTemp("", "values-*.yaml")
	if err != nil {
		return "", fmt.Errorf("failed to create values temp file: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to marshal values: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write values: %w", err)
	}
	f.Close()
	return f.Name(), nil
}

// diagnostic builds a single error message from a failed invocation,
// preferring captured stderr over the exec error.
func diagnostic(result executor.Result, err error) string {
	if msg := strings.TrimSpace(result.Stderr); msg != "" {
		return msg
	}
	return err.Error()
}

func isNotFound(stderr string) bool {
	return strings.Contains(stderr, "not found") || strings.Contains(stderr, "NotFound")
}
