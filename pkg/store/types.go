/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package store

// Status is the user-facing lifecycle status of a store.
type Status string

const (
	StatusProvisioning Status = "Provisioning"
	StatusReady        Status = "Ready"
	StatusFailed       Status = "Failed"
)

// Engine identifies the storefront application installed into a workload.
const (
	EngineWooCommerce = "woocommerce"
)

// ChartName is the packaged workload template family. Releases whose chart
// reference does not carry this prefix belong to other tenants of the
// cluster and are ignored.
const ChartName = "universal-store"

// ChartReference is the chart identifier recorded on transient entries
// before the package manager reports its own.
const ChartReference = "universal-store-0.2.0"

// Record describes a single store. Authoritative records are recomputed from
// cluster state on every read; transient records cover the window before the
// cluster observes the workload.
type Record struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Status     Status `json:"status"`
	HelmStatus string `json:"helmStatus"`
	URL        string `json:"url"`
	AdminURL   string `json:"adminUrl"`
	Engine     string `json:"engine"`
	Created    string `json:"created"`
	Updated    string `json:"updated"`
	Chart      string `json:"chart"`
	Error      string `json:"error,omitempty"`
}

// ValidEngine reports whether engine names a supported storefront engine.
func ValidEngine(engine string) bool {
	return engine == EngineWooCommerce
}

// SupportedEngines lists the storefront engines accepted by the API.
func SupportedEngines() []string {
	return []string{EngineWooCommerce}
}

// MapHelmStatus maps the package manager's raw status vocabulary to the
// three-valued lifecycle status. The mapping is total: unrecognized values
// map to Provisioning as the safe default.
func MapHelmStatus(raw string) Status {
	switch raw {
	case "deployed":
		return StatusReady
	case "failed":
		return StatusFailed
	default:
		// pending-install, pending-upgrade, uninstalling, unknown, ...
		return StatusProvisioning
	}
}
