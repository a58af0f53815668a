/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package executor

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"time"
)

// Result captures the outcome of an external command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner invokes external commands. The concrete implementation shells out;
// tests substitute a fake.
type Runner interface {
	// Run invokes name with args and an overall timeout, capturing output.
	// A non-zero exit status is returned as an error alongside the captured
	// Result.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)

	// RunWithStdin is Run with the command's stdin connected to the given
	// reader. Used for streamed byte-for-byte payload delivery.
	RunWithStdin(ctx context.Context, timeout time.Duration, stdin io.Reader, name string, args ...string) (Result, error)
}

// Executor runs commands via os/exec with argument-vector invocation.
// It carries no retry logic of its own.
type Executor struct{}

func New() *Executor {
	return &Executor{}
}

func (e *Executor) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	return e.RunWithStdin(ctx, timeout, nil, name, args...)
}

func (e *Executor) RunWithStdin(ctx context.Context, timeout time.Duration, stdin io.Reader, name string, args ...string) (Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	// ProcessState is nil when the command never started.
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	} else {
		result.ExitCode = -1
	}
	return result, err
}
