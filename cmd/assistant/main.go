// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command assistant is the console front end for the rule-based assistant:
// a predefined demo, an interactive chat and a one-shot classifier.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAssist/services/assist"
	"github.com/AleutianAI/AleutianAssist/services/assist/config"
)

// app holds flag values and the components built before a command runs.
type app struct {
	knowledgePath  string
	traceEnabled   bool
	metricsEnabled bool
	logLevel       string

	logger        *slog.Logger
	router        *assist.Router
	knowledge     *config.Knowledge
	shutdownTrace func(context.Context) error
	ready         bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	if err := a.execute(ctx, root); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "assistant",
		Short: "Rule-based AI assistant with music, fitness and study helpers",
		Long: `assistant classifies what you type into MUSIC, FITNESS, STUDY or GENERAL,
routes it to a specialised helper and greets you once per helper.

Run without a subcommand to pick a mode from the menu.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.knowledgePath, "knowledge", "", "Path to a knowledge YAML file (defaults to the embedded tables)")
	pf.BoolVar(&a.traceEnabled, "trace", false, "Write OpenTelemetry spans to stderr")
	pf.BoolVar(&a.metricsEnabled, "metrics", false, "Print assistant metrics in Prometheus text format on exit")
	pf.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		newDemoCmd(a),
		newChatCmd(a),
		newClassifyCmd(a),
	)
	return root, a
}

// execute runs the command tree and then flushes tracing and metrics.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	runErr := root.ExecuteContext(ctx)
	return errors.Join(runErr, a.finish(context.WithoutCancel(ctx), root))
}

// setup configures logging and tracing, loads knowledge and builds the router.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	if a.traceEnabled {
		shutdown, err := setupTracing(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("setting up tracing: %w", err)
		}
		a.shutdownTrace = shutdown
	}

	ctx := cmd.Context()
	var k *config.Knowledge
	if a.knowledgePath != "" {
		k, err = config.LoadKnowledgeFile(ctx, a.knowledgePath)
	} else {
		k, err = config.GetKnowledge(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading knowledge: %w", err)
	}
	a.knowledge = k

	router, err := assist.NewRouter(k, logger)
	if err != nil {
		return err
	}
	a.router = router
	a.ready = true
	return nil
}

// finish shuts down tracing and prints metrics when requested.
func (a *app) finish(ctx context.Context, cmd *cobra.Command) error {
	var errs []error
	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down tracing: %w", err))
		}
		a.shutdownTrace = nil
	}
	if a.metricsEnabled && a.ready {
		if err := writeMetrics(cmd.OutOrStdout(), metricsPrefix); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}
