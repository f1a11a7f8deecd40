// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routing

import (
	"log/slog"
	"regexp"
	"strings"
)

// compiledPattern holds a pattern string alongside its pre-compiled regex (if applicable).
type compiledPattern struct {
	raw   string
	regex *regexp.Regexp // nil for substring-only patterns
}

// compilePatterns pre-compiles keywords for substring matching.
//
// Description:
//
//	Keywords are lower-cased. A keyword containing ".*" is compiled as a
//	case-insensitive regex; an invalid regex is logged and falls back to
//	substring matching on the raw text.
func compilePatterns(patterns []string, logger *slog.Logger) []compiledPattern {
	result := make([]compiledPattern, len(patterns))
	for i, pattern := range patterns {
		patternLower := strings.ToLower(pattern)
		cp := compiledPattern{raw: patternLower}
		if strings.Contains(patternLower, ".*") {
			re, err := regexp.Compile("(?i)" + patternLower)
			if err != nil {
				logger.Warn("routing: invalid regex pattern, matching as substring",
					slog.String("pattern", pattern),
					slog.String("error", err.Error()),
				)
			} else {
				cp.regex = re
			}
		}
		result[i] = cp
	}
	return result
}

// matchCompiledPattern checks if a lower-cased text matches a pre-compiled pattern.
func matchCompiledPattern(textLower string, cp compiledPattern) bool {
	if cp.regex != nil {
		return cp.regex.MatchString(textLower)
	}
	return strings.Contains(textLower, cp.raw)
}

// matchCompiledPatterns reports whether any pattern matches, and which one.
func matchCompiledPatterns(textLower string, patterns []compiledPattern) (string, bool) {
	for _, cp := range patterns {
		if matchCompiledPattern(textLower, cp) {
			return cp.raw, true
		}
	}
	return "", false
}

// WordPattern matches a phrase as a whole word or word sequence.
//
// Description:
//
//	Built from `\b<phrase>\b` with the phrase quoted, so "oop" matches
//	"explain oop concepts" but not "cooperation".
//
// Thread Safety: Safe for concurrent use.
type WordPattern struct {
	phrase string
	regex  *regexp.Regexp
}

// NewWordPattern compiles a whole-word matcher for phrase.
func NewWordPattern(phrase string) WordPattern {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	return WordPattern{
		phrase: phrase,
		regex:  regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`),
	}
}

// Phrase returns the lower-cased phrase.
func (w WordPattern) Phrase() string { return w.phrase }

// Match reports whether the phrase occurs as whole words in textLower.
func (w WordPattern) Match(textLower string) bool {
	return w.regex.MatchString(textLower)
}

// truncateForLog shortens s to at most n bytes for log previews.
func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
