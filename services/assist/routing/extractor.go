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
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAssist/services/assist/config"
	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

// valueGroup is a canonical value and the patterns that select it.
type valueGroup struct {
	value    string
	patterns []compiledPattern
}

// PreferenceExtractor pulls fitness level, genre and mood from free text.
//
// Description:
//
//	Each attribute is resolved independently by substring containment on
//	the lower-cased text. Groups (and moods) are scanned in declaration
//	order and the first group with any matching synonym wins. Attributes
//	that do not match are absent from the result.
//
// Thread Safety: Safe for concurrent use (all state is read-only after construction).
type PreferenceExtractor struct {
	levels []valueGroup
	genres []valueGroup
	moods  []valueGroup
	logger *slog.Logger
}

// NewPreferenceExtractor builds an extractor from the knowledge vocabularies.
//
// Inputs:
//
//	k - Loaded knowledge. Must not be nil.
//	logger - Logger for debug output. May be nil (uses slog.Default()).
func NewPreferenceExtractor(k *config.Knowledge, logger *slog.Logger) *PreferenceExtractor {
	if k == nil {
		panic("NewPreferenceExtractor: knowledge must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	moods := make([]valueGroup, len(k.Preferences.Moods))
	for i, m := range k.Preferences.Moods {
		moods[i] = valueGroup{value: m, patterns: compilePatterns([]string{m}, logger)}
	}

	return &PreferenceExtractor{
		levels: compileGroups(k.Preferences.FitnessLevels, logger),
		genres: compileGroups(k.Preferences.Genres, logger),
		moods:  moods,
		logger: logger,
	}
}

func compileGroups(groups []config.KeywordGroup, logger *slog.Logger) []valueGroup {
	out := make([]valueGroup, len(groups))
	for i, g := range groups {
		out[i] = valueGroup{value: g.Value, patterns: compilePatterns(g.Synonyms, logger)}
	}
	return out
}

// Extract returns the preferences detected in text. It never fails; an
// empty set is returned when nothing matches.
func (e *PreferenceExtractor) Extract(ctx context.Context, text string) datatypes.PreferenceSet {
	_, span := routingTracer.Start(ctx, "routing.PreferenceExtractor.Extract")
	defer span.End()

	textLower := strings.ToLower(text)
	prefs := make(datatypes.PreferenceSet, 3)

	for _, attr := range []struct {
		name   string
		groups []valueGroup
	}{
		{datatypes.AttrFitnessLevel, e.levels},
		{datatypes.AttrGenre, e.genres},
		{datatypes.AttrMood, e.moods},
	} {
		if value, ok := firstGroup(textLower, attr.groups); ok {
			prefs[attr.name] = value
			extractedAttributesTotal.WithLabelValues(attr.name, value).Inc()
			span.SetAttributes(attribute.String(attr.name, value))
		}
	}

	span.SetAttributes(attribute.Int("extracted_count", len(prefs)))
	if len(prefs) > 0 {
		e.logger.Debug("preferences extracted",
			slog.Any("preferences", map[string]string(prefs)),
			slog.String("text_preview", truncateForLog(text, 80)),
		)
	}
	return prefs
}

func firstGroup(textLower string, groups []valueGroup) (string, bool) {
	for _, g := range groups {
		if _, ok := matchCompiledPatterns(textLower, g.patterns); ok {
			return g.value, true
		}
	}
	return "", false
}
