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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

const (
	invalidAgeMsg  = "Please enter a valid age (number)"
	emptyInputHint = "Please enter a command or 'quit' to exit"
)

// =============================================================================
// Console
// =============================================================================

// console reads line-oriented answers and renders assistant replies.
type console struct {
	in     *bufio.Scanner
	out    io.Writer
	label  lipgloss.Style
	faint  lipgloss.Style
	useTTY bool
}

func newConsole(cmd *cobra.Command) *console {
	out := cmd.OutOrStdout()
	renderer := lipgloss.NewRenderer(out)

	stdin := cmd.InOrStdin()
	useTTY := false
	if f, ok := stdin.(*os.File); ok {
		useTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &console{
		in:     bufio.NewScanner(stdin),
		out:    out,
		label:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		faint:  renderer.NewStyle().Faint(true),
		useTTY: useTTY,
	}
}

// prompt prints label and returns the trimmed next line. ok is false at end
// of input.
func (c *console) prompt(label string) (line string, ok bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *console) reply(resp datatypes.Response) {
	fmt.Fprintf(c.out, "%s %s\n", c.label.Render("Assistant:"), resp.Message())
	fmt.Fprintln(c.out, c.faint.Render(fmt.Sprintf("(Confidence: %.1f)", resp.Confidence())))
	fmt.Fprintln(c.out)
}

// =============================================================================
// Chat Command
// =============================================================================

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Create a profile and talk to the assistant interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd.Context(), newConsole(cmd))
		},
	}
}

// runChat collects a profile and runs the read-route-print loop until quit
// or end of input.
func (a *app) runChat(ctx context.Context, c *console) error {
	user, err := a.readProfile(ctx, c)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}

	tier := "Standard"
	if user.IsPremium() {
		tier = "Premium"
	}
	fmt.Fprintf(c.out, "\nWelcome %s! %s user account created.\n", user.Name(), tier)
	fmt.Fprintln(c.out, "You can ask for:")
	fmt.Fprintln(c.out, "- Music recommendations (try: 'play happy music')")
	fmt.Fprintln(c.out, "- Fitness workouts (try: 'I need a beginner strength workout')")
	fmt.Fprintln(c.out, "- Study help (try: 'explain OOP concepts')")
	fmt.Fprintln(c.out, "- General questions")
	fmt.Fprintln(c.out, "Type 'help' for available commands or 'quit' to exit.")
	fmt.Fprintln(c.out)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, ok := c.prompt("You: ")
		if !ok {
			return nil
		}

		switch strings.ToLower(input) {
		case "quit":
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		case "help":
			printChatHelp(c.out)
			continue
		case "":
			fmt.Fprintln(c.out, emptyInputHint)
			continue
		}

		resp, utt, err := a.router.Dispatch(ctx, user, input)
		if err != nil {
			a.logger.Warn("chat input rejected", slog.String("error", err.Error()))
			fmt.Fprintln(c.out, emptyInputHint)
			continue
		}
		a.logger.Debug("chat turn", slog.String("utterance", utt.String()))
		c.reply(resp)
	}
}

func printChatHelp(out io.Writer) {
	fmt.Fprintln(out, "Available commands:")
	fmt.Fprintln(out, "- Music: 'play [mood] music', 'recommend songs'")
	fmt.Fprintln(out, "- Fitness: 'workout', 'exercise', '[level] [type] training'")
	fmt.Fprintln(out, "- Study: 'explain [topic]', 'learn about [subject]'")
	fmt.Fprintln(out, "- General: any other questions")
	fmt.Fprintln(out, "- 'quit' to exit")
}

// =============================================================================
// Profile Entry
// =============================================================================

// readProfile builds the session user, with a form on a terminal and line
// prompts otherwise. It returns io.EOF when input ends before the profile
// is complete.
func (a *app) readProfile(ctx context.Context, c *console) (datatypes.User, error) {
	if c.useTTY {
		return readProfileForm(ctx)
	}
	return readProfileLines(c)
}

func readProfileForm(ctx context.Context) (datatypes.User, error) {
	var (
		name    string
		ageText string
		premium bool
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Enter your age").
				Value(&ageText).
				Validate(func(s string) error {
					if _, err := parseAge(s); err != nil {
						return errors.New(invalidAgeMsg)
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Are you a premium user?").
				Value(&premium),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return datatypes.User{}, io.EOF
		}
		return datatypes.User{}, fmt.Errorf("profile form: %w", err)
	}

	age, err := parseAge(ageText)
	if err != nil {
		return datatypes.User{}, err
	}
	return datatypes.NewUser(name, age, nil, premium)
}

func readProfileLines(c *console) (datatypes.User, error) {
	var name string
	for {
		line, ok := c.prompt("Enter your name: ")
		if !ok {
			return datatypes.User{}, io.EOF
		}
		if line != "" {
			name = line
			break
		}
		fmt.Fprintln(c.out, "Please enter a name")
	}

	var age int
	for {
		line, ok := c.prompt("Enter your age: ")
		if !ok {
			return datatypes.User{}, io.EOF
		}
		n, err := parseAge(line)
		if err == nil {
			age = n
			break
		}
		fmt.Fprintln(c.out, invalidAgeMsg)
	}

	line, ok := c.prompt("Are you a premium user? (y/n): ")
	if !ok {
		return datatypes.User{}, io.EOF
	}
	premium := strings.HasPrefix(strings.ToLower(line), "y")

	return datatypes.NewUser(name, age, nil, premium)
}

// parseAge accepts a positive integer.
func parseAge(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: age must be greater than 0", datatypes.ErrInvalidArgument)
	}
	return n, nil
}
