// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

// demoCommands is the predefined script replayed by the demo.
var demoCommands = []string{
	"I want energetic music for my workout",
	"Play some relaxing music",
	"I need a beginner strength workout",
	"Give me an advanced cardio routine",
	"Explain OOP concepts",
	"What is python?",
	"Tell me about algorithms",
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Replay the predefined demo script for a premium user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDemo(cmd, cmd.OutOrStdout())
		},
	}
}

// runDemo routes every demo command for Alice, a premium user, and prints
// the detected intent, timestamp and response fields.
func (a *app) runDemo(cmd *cobra.Command, out io.Writer) error {
	ctx := cmd.Context()

	alice, err := datatypes.NewUser("Alice", 25, nil, true)
	if err != nil {
		return err
	}

	fmt.Fprint(out, "=== AI Assistant System Demo ===\n\n")
	for _, command := range demoCommands {
		fmt.Fprintf(out, "User command: '%s'\n", command)

		resp, utt, err := a.router.Dispatch(ctx, alice, command)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Detected type: %s\n", utt.Intent())
		fmt.Fprintf(out, "Request timestamp: %s\n", utt.CreatedAt().Format(time.DateTime))
		fmt.Fprintf(out, "Response: %s\n", resp.Message())
		fmt.Fprintf(out, "Confidence: %s\n", strconv.FormatFloat(resp.Confidence(), 'f', -1, 64))
		fmt.Fprintf(out, "Action performed: %t\n", resp.ActionPerformed())
		fmt.Fprintln(out, strings.Repeat("-", 50))
	}
	return nil
}
