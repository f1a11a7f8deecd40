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
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Print the intent and extracted preferences for a phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			text := strings.Join(args, " ")

			intent := a.router.Classify(ctx, text)
			prefs := a.router.Extract(ctx, text)

			fmt.Fprintf(out, "Intent: %s\n", intent)
			if len(prefs) == 0 {
				fmt.Fprintln(out, "Preferences: (none)")
				return nil
			}
			pairs := make([]string, 0, len(prefs))
			for _, attr := range slices.Sorted(maps.Keys(prefs)) {
				pairs = append(pairs, attr+"="+prefs[attr])
			}
			fmt.Fprintf(out, "Preferences: %s\n", strings.Join(pairs, " "))
			return nil
		},
	}
}
