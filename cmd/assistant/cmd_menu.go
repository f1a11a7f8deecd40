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

	"github.com/spf13/cobra"
)

// runMenu asks for a mode and runs it once.
func (a *app) runMenu(cmd *cobra.Command) error {
	c := newConsole(cmd)

	fmt.Fprintln(c.out, "AI Assistant Framework")
	fmt.Fprintln(c.out, "======================")
	fmt.Fprintln(c.out, "Choose an option:")
	fmt.Fprintln(c.out, "1. Run demo with predefined commands")
	fmt.Fprintln(c.out, "2. Interactive mode - enter your own requests")
	fmt.Fprintln(c.out, "3. Exit")

	for {
		choice, ok := c.prompt("\nEnter your choice (1-3): ")
		if !ok {
			return nil
		}
		switch choice {
		case "1":
			return a.runDemo(cmd, c.out)
		case "2":
			return a.runChat(cmd.Context(), c)
		case "3":
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid choice. Please enter 1, 2, or 3.")
		}
	}
}
