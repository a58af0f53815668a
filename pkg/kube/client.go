/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package kube

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/executor"
	"github.com/storeforge/storeforge/pkg/logger/log"
)

const (
	// DefaultExecTimeout bounds a single remote invocation inside a workload.
	DefaultExecTimeout = 3 * time.Minute

	queryTimeout = 30 * time.Second
)

// Client provides the control-plane primitives the provisioner needs:
// waiting on workload readiness, resolving the concrete pod behind a
// selector, executing commands inside it, and namespace teardown.
type Client struct {
	runner     executor.Runner
	kubectlBin string
}

func NewClient(runner executor.Runner, cfg *config.Config) *Client {
	return &Client{runner: runner, kubectlBin: cfg.KubectlBin}
}

// WaitForPods blocks until pods matching the label selector reach the Ready
// condition, or the timeout elapses.
func (c *Client) WaitForPods(ctx context.Context, namespace, labelSelector string, timeout time.Duration) error {
	args := []string{
		"wait", "pods",
		"-n", namespace,
		"-l", labelSelector,
		"--for=condition=Ready",
		"--timeout", timeout.String(),
	}

	log.Infof("Waiting for pods: kubectl %s", strings.Join(args, " "))

	// kubectl enforces its own --timeout; the process bound adds headroom
	// for API round-trips.
	result, err := c.runner.Run(ctx, timeout+30*time.Second, c.kubectlBin, args...)
	if err != nil {
		return fmt.Errorf("wait for pods failed: %s", diagnostic(result, err))
	}

	log.Infof("Pods ready: %s", strings.TrimSpace(result.Stdout))
	return nil
}

// PodName resolves the concrete pod instance backing a workload. Remote
// execution needs an addressable unit, not a logical selector.
func (c *Client) PodName(ctx context.Context, namespace, labelSelector string) (string, error) {
	result, err := c.runner.Run(ctx, queryTimeout, c.kubectlBin,
		"get", "pods",
		"-n", namespace,
		"-l", labelSelector,
		"-o", "jsonpath={.items[0].metadata.name}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve pod for selector %q: %s", labelSelector, diagnostic(result, err))
	}

	name := strings.TrimSpace(result.Stdout)
	if name == "" {
		return "", fmt.Errorf("no pod found for selector %q in namespace %q", labelSelector, namespace)
	}
	return name, nil
}

// Exec runs a command inside the given pod and container.
func (c *Client) Exec(ctx context.Context, namespace, pod, container string, timeout time.Duration, command ...string) (string, error) {
	return c.exec(ctx, namespace, pod, container, timeout, nil, command...)
}

// ExecStdin runs a command inside the pod with its stdin connected to the
// given reader. This is the byte-for-byte delivery path for payloads whose
// content must not pass through argument quoting.
func (c *Client) ExecStdin(ctx context.Context, namespace, pod, container string, timeout time.Duration, stdin io.Reader, command ...string) (string, error) {
	return c.exec(ctx, namespace, pod, container, timeout, stdin, command...)
}

func (c *Client) exec(ctx context.Context, namespace, pod, container string, timeout time.Duration, stdin io.Reader, command ...string) (string, error) {
	if timeout == 0 {
		timeout = DefaultExecTimeout
	}

	args := []string{"exec"}
	if stdin != nil {
		args = append(args, "-i")
	}
	args = append(args, pod, "-n", namespace)
	if container != "" {
		args = append(args, "-c", container)
	}
	args = append(args, "--")
	args = append(args, command...)

	result, err := c.runner.RunWithStdin(ctx, timeout, stdin, c.kubectlBin, args...)
	if err != nil {
		return result.Stdout, fmt.Errorf("exec in pod %s/%s failed: %s", namespace, pod, diagnostic(result, err))
	}
	return result.Stdout, nil
}

// DeleteNamespace removes a namespace, treating "not found" as success.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	result, err := c.runner.Run(ctx, 2*time.Minute, c.kubectlBin,
		"delete", "namespace", name, "--ignore-not-found")
	if err != nil {
		return fmt.Errorf("namespace deletion failed: %s", diagnostic(result, err))
	}
	return nil
}

func diagnostic(result executor.Result, err error) string {
	if msg := strings.TrimSpace(result.Stderr); msg != "" {
		return msg
	}
	return err.Error()
}
