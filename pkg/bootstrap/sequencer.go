/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/logger/log"
	"github.com/storeforge/storeforge/pkg/retry"
)

// Stage names, in execution order.
const (
	StageWaitWorkload  = "wait-workload"
	StageResolvePod    = "resolve-pod"
	StageWaitDatabase  = "wait-database"
	StageInstallCLI    = "install-cli"
	StageCoreInstall   = "core-install"
	StageInstallPlugin = "install-plugin"
	StageInstallTheme  = "install-theme"
	StageConfigure     = "configure"
	StageSeedContent   = "seed-content"
)

const (
	workloadReadyTimeout = 5 * time.Minute

	// The database reports reachable before the owning application has
	// finished its own schema initialization; the grace delay is a safety
	// margin, not a correctness guarantee.
	databaseProbeAttempts = 20
	databaseProbeDelay    = 15 * time.Second
	databaseGraceDelay    = 30 * time.Second

	pluginRetryAttempts = 5
	themeRetryAttempts  = 3
	configRetryAttempts = 3
	seedRetryAttempts   = 3
	retryDelay          = 15 * time.Second

	wordpressContainer = "wordpress"
	wordpressPath      = "/var/www/html"
	payloadRemotePath  = "/tmp/woo-setup.php"
	probeRemotePath    = "/tmp/db-probe.sh"
)

// ControlPlane is the subset of cluster primitives the sequencer needs.
type ControlPlane interface {
	WaitForPods(ctx context.Context, namespace, labelSelector string, timeout time.Duration) error
	PodName(ctx context.Context, namespace, labelSelector string) (string, error)
	Exec(ctx context.Context, namespace, pod, container string, timeout time.Duration, command ...string) (string, error)
	ExecStdin(ctx context.Context, namespace, pod, container string, timeout time.Duration, stdin io.Reader, command ...string) (string, error)
}

// StepResult captures the outcome of one pipeline stage, for diagnostics
// only; results are not persisted.
type StepResult struct {
	Stage    string
	Attempts int
	OK       bool
	Output   string
}

// Sequencer turns a freshly scheduled, empty workload into a configured
// store. Stages run strictly in order and fail fast; a failed bootstrap
// leaves the workload addressable for inspection, nothing is rolled back.
type Sequencer struct {
	cluster     ControlPlane
	storeDomain string

	// Delays are fields so tests can shrink them.
	probeDelay time.Duration
	graceDelay time.Duration
	stepDelay  time.Duration
}

func NewSequencer(cluster ControlPlane, cfg *config.Config) *Sequencer {
	return &Sequencer{
		cluster:     cluster,
		storeDomain: cfg.StoreDomain,
		probeDelay:  databaseProbeDelay,
		graceDelay:  databaseGraceDelay,
		stepDelay:   retryDelay,
	}
}

// Provision runs the full bootstrap pipeline for the named store. The
// returned error carries the failing stage's diagnostic message.
func (s *Sequencer) Provision(ctx context.Context, name string) error {
	results, err := s.run(ctx, name)
	for _, r := range results {
		if r.OK {
			log.Infof("[%s] %s completed (attempts: %d)", name, r.Stage, r.Attempts)
		} else {
			log.Errorf("[%s] %s failed after %d attempt(s): %s", name, r.Stage, r.Attempts, r.Output)
		}
	}
	return err
}

func (s *Sequencer) run(ctx context.Context, name string) ([]StepResult, error) {
	var results []StepResult
	selector := workloadSelector(name)

	log.Infof("=== Starting bootstrap for store: %s ===", name)

	// 1. Readiness gate: bootstrap must not begin against a workload whose
	// application process has not started.
	if err := s.cluster.WaitForPods(ctx, name, selector, workloadReadyTimeout); err != nil {
		return append(results, failed(StageWaitWorkload, 1, err)),
			fmt.Errorf("%s: %w", StageWaitWorkload, err)
	}
	results = append(results, ok(StageWaitWorkload, 1))

	// 2. Remote execution needs a concrete addressable unit.
	pod, err := s.cluster.PodName(ctx, name, selector)
	if err != nil {
		return append(results, failed(StageResolvePod, 1, err)),
			fmt.Errorf("%s: %w", StageResolvePod, err)
	}
	results = append(results, ok(StageResolvePod, 1))
	log.Infof("[%s] Execution unit: %s", name, pod)

	// 3. Database readiness: inject the probe once, then poll it.
	attempts, err := s.waitDatabase(ctx, name, pod)
	if err != nil {
		return append(results, failed(StageWaitDatabase, attempts, err)),
			fmt.Errorf("%s: %w", StageWaitDatabase, err)
	}
	results = append(results, ok(StageWaitDatabase, attempts))

	// 4. Administration tool. Re-running the install is safe.
	if _, err := s.cluster.Exec(ctx, name, pod, wordpressContainer, 0,
		"bash", "-c", installWPCLIScript); err != nil {
		return append(results, failed(StageInstallCLI, 1, err)),
			fmt.Errorf("%s: %w", StageInstallCLI, err)
	}
	results = append(results, ok(StageInstallCLI, 1))

	// 5. Core install runs exactly once and is not retried; a failed store
	// must be deleted before provisioning it again.
	if err := s.coreInstall(ctx, name, pod); err != nil {
		return append(results, failed(StageCoreInstall, 1, err)),
			fmt.Errorf("%s: %w", StageCoreInstall, err)
	}
	results = append(results, ok(StageCoreInstall, 1))

	// 6. Plugin and theme installs fetch from remote registries inside the
	// workload and are the most failure-prone stages.
	attempts, err = s.retryWP(ctx, name, pod, pluginRetryAttempts,
		"plugin", "install", "woocommerce", "--activate")
	if err != nil {
		return append(results, failed(StageInstallPlugin, attempts, err)),
			fmt.Errorf("%s: %w", StageInstallPlugin, err)
	}
	results = append(results, ok(StageInstallPlugin, attempts))

	attempts, err = s.retryWP(ctx, name, pod, themeRetryAttempts,
		"theme", "install", "storefront", "--activate")
	if err != nil {
		return append(results, failed(StageInstallTheme, attempts, err)),
			fmt.Errorf("%s: %w", StageInstallTheme, err)
	}
	results = append(results, ok(StageInstallTheme, attempts))

	// 7. Idempotent settings writes.
	attempts, err = s.configure(ctx, name, pod)
	if err != nil {
		return append(results, failed(StageConfigure, attempts, err)),
			fmt.Errorf("%s: %w", StageConfigure, err)
	}
	results = append(results, ok(StageConfigure, attempts))

	// 8. Seed payload: streamed transfer, then retryable evaluation.
	attempts, err = s.seedContent(ctx, name, pod)
	if err != nil {
		return append(results, failed(StageSeedContent, attempts, err)),
			fmt.Errorf("%s: %w", StageSeedContent, err)
	}
	results = append(results, ok(StageSeedContent, attempts))

	log.Infof("=== Bootstrap completed for store: %s ===", name)
	return results, nil
}

// waitDatabase transfers the probe script into the pod and polls it until
// the database answers, then observes the fixed grace delay.
func (s *Sequencer) waitDatabase(ctx context.Context, name, pod string) (int, error) {
	if err := s.transferFile(ctx, name, pod, probeRemotePath, strings.NewReader(databaseProbeScript)); err != nil {
		return 1, fmt.Errorf("failed to inject database probe: %w", err)
	}

	attempts := 0
	err := retry.Do(ctx, databaseProbeAttempts, s.probeDelay, func(ctx context.Context, attempt int) error {
		attempts = attempt
		log.Infof("[%s] Probing database (attempt %d/%d)", name, attempt, databaseProbeAttempts)
		_, err := s.cluster.Exec(ctx, name, pod, wordpressContainer, 0, "sh", probeRemotePath)
		return err
	})
	if err != nil {
		return attempts, fmt.Errorf("database never became ready after %d attempts: %w", databaseProbeAttempts, err)
	}

	log.Infof("[%s] Database reachable, waiting %s for schema initialization", name, s.graceDelay)
	if err := retry.Sleep(ctx, s.graceDelay); err != nil {
		return attempts, err
	}
	return attempts, nil
}

func (s *Sequencer) coreInstall(ctx context.Context, name, pod string) error {
	url := fmt.Sprintf("http://%s.%s", name, s.storeDomain)
	password := uuid.New().String()[:13]

	_, err := s.cluster.Exec(ctx, name, pod, wordpressContainer, 0, wpArgs(
		"core", "install",
		"--url="+url,
		"--title="+name,
		"--admin_user=admin",
		"--admin_password="+password,
		fmt.Sprintf("--admin_email=admin@%s.%s", name, s.storeDomain),
		"--skip-email")...)
	if err != nil {
		return err
	}

	log.Infof("[%s] Core installed at %s (admin user: admin, password: %s)", name, url, password)
	return nil
}

func (s *Sequencer) configure(ctx context.Context, name, pod string) (int, error) {
	options := [][]string{
		{"option", "update", "woocommerce_currency", "USD"},
		{"option", "update", "WPLANG", "en_US"},
	}

	attempts := 0
	err := retry.Do(ctx, configRetryAttempts, s.stepDelay, func(ctx context.Context, attempt int) error {
		attempts = attempt
		for _, opt := range options {
			if _, err := s.cluster.Exec(ctx, name, pod, wordpressContainer, 0, wpArgs(opt...)...); err != nil {
				return err
			}
		}
		return nil
	})
	return attempts, err
}

func (s *Sequencer) seedContent(ctx context.Context, name, pod string) (int, error) {
	if err := s.transferFile(ctx, name, pod, payloadRemotePath, strings.NewReader(SetupPayload)); err != nil {
		return 1, fmt.Errorf("failed to transfer setup payload: %w", err)
	}

	attempts := 0
	err := retry.Do(ctx, seedRetryAttempts, s.stepDelay, func(ctx context.Context, attempt int) error {
		attempts = attempt
		_, err := s.cluster.Exec(ctx, name, pod, wordpressContainer, 0,
			wpArgs("eval-file", payloadRemotePath)...)
		return err
	})
	return attempts, err
}

// retryWP runs a wp-cli command under the standard bounded-retry policy.
func (s *Sequencer) retryWP(ctx context.Context, name, pod string, maxAttempts int, args ...string) (int, error) {
	attempts := 0
	err := retry.Do(ctx, maxAttempts, s.stepDelay, func(ctx context.Context, attempt int) error {
		attempts = attempt
		_, err := s.cluster.Exec(ctx, name, pod, wordpressContainer, 0, wpArgs(args...)...)
		return err
	})
	return attempts, err
}

// transferFile streams content into a file inside the pod. The write goes
// through stdin so payload bytes never pass through argument quoting.
func (s *Sequencer) transferFile(ctx context.Context, name, pod, remotePath string, content io.Reader) error {
	_, err := s.cluster.ExecStdin(ctx, name, pod, wordpressContainer, 0, content,
		"sh", "-c", "cat > "+remotePath)
	return err
}

// workloadSelector returns the label selector identifying the application
// pod of a store's workload.
func workloadSelector(name string) string {
	return fmt.Sprintf("app.kubernetes.io/instance=%s,app.kubernetes.io/name=wordpress", name)
}

// wpArgs builds an administration tool invocation. wp runs as root inside
// the container, against the application's install path.
func wpArgs(args ...string) []string {
	out := append([]string{"wp"}, args...)
	return append(out, "--path="+wordpressPath, "--allow-root")
}

func ok(stage string, attempts int) StepResult {
	return StepResult{Stage: stage, Attempts: attempts, OK: true}
}

func failed(stage string, attempts int, err error) StepResult {
	return StepResult{Stage: stage, Attempts: attempts, Output: err.Error()}
}
