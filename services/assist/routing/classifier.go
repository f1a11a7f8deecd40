// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routing turns raw utterance text into an intent tag and a set of
// extracted preferences using ordered keyword tables.
package routing

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAssist/services/assist/config"
	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

// IntentClassifier assigns an intent tag by keyword containment.
//
// Description:
//
//	The text is lower-cased and each intent's keywords are tested as
//	substrings, intents in declaration order. The first intent with any
//	matching keyword wins; when none match the result is GENERAL.
//
// Thread Safety: Safe for concurrent use (all state is read-only after construction).
type IntentClassifier struct {
	intents  []datatypes.IntentTag
	patterns [][]compiledPattern
	logger   *slog.Logger
}

// NewIntentClassifier builds a classifier from the knowledge intent table.
//
// Inputs:
//
//	k - Loaded knowledge. Must not be nil.
//	logger - Logger for debug output. May be nil (uses slog.Default()).
//
// Outputs:
//
//	*IntentClassifier - The constructed classifier.
func NewIntentClassifier(k *config.Knowledge, logger *slog.Logger) *IntentClassifier {
	if k == nil {
		panic("NewIntentClassifier: knowledge must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &IntentClassifier{
		intents:  make([]datatypes.IntentTag, len(k.Intents)),
		patterns: make([][]compiledPattern, len(k.Intents)),
		logger:   logger,
	}
	for i, ik := range k.Intents {
		c.intents[i] = ik.Intent
		c.patterns[i] = compilePatterns(ik.Keywords, logger)
	}
	return c
}

// Classify returns the intent for text. It never fails; unmatched or empty
// text yields GENERAL.
func (c *IntentClassifier) Classify(ctx context.Context, text string) datatypes.IntentTag {
	_, span := routingTracer.Start(ctx, "routing.IntentClassifier.Classify")
	defer span.End()

	intent, keyword := c.match(strings.ToLower(text))

	classificationsTotal.WithLabelValues(intent.String()).Inc()
	if keyword != "" {
		keywordHitsTotal.WithLabelValues(intent.String(), keyword).Inc()
	}

	span.SetAttributes(
		attribute.String("intent", intent.String()),
		attribute.String("keyword", keyword),
	)
	c.logger.Debug("utterance classified",
		slog.String("intent", intent.String()),
		slog.String("keyword", keyword),
		slog.String("text_preview", truncateForLog(text, 80)),
	)

	return intent
}

func (c *IntentClassifier) match(textLower string) (datatypes.IntentTag, string) {
	for i, intent := range c.intents {
		if kw, ok := matchCompiledPatterns(textLower, c.patterns[i]); ok {
			return intent, kw
		}
	}
	return datatypes.IntentGeneral, ""
}
