// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the per-intent response strategies.
//
// Each handler owns a static knowledge table and produces a canned,
// template-filled Response. All four kinds share greeting, interaction
// counting and the default clarification through an embedded persona.
package handlers

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var handlerResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "assist",
	Subsystem: "handlers",
	Name:      "responses_total",
	Help:      "Total handler responses by handler kind and outcome",
}, []string{"handler", "outcome"})

// Outcome labels for handlerResponsesTotal.
const (
	outcomeAction        = "action"
	outcomeClarification = "clarification"
	outcomeFallback      = "fallback"
)

// =============================================================================
// Kind
// =============================================================================

// Kind enumerates the handler variants.
type Kind int

const (
	KindGeneral Kind = iota
	KindMusic
	KindFitness
	KindStudy
)

// String returns a lower-case label for the kind.
func (k Kind) String() string {
	switch k {
	case KindMusic:
		return "music"
	case KindFitness:
		return "fitness"
	case KindStudy:
		return "study"
	case KindGeneral:
		return "general"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Intent returns the intent tag served by the kind.
func (k Kind) Intent() datatypes.IntentTag {
	switch k {
	case KindMusic:
		return datatypes.IntentMusic
	case KindFitness:
		return datatypes.IntentFitness
	case KindStudy:
		return datatypes.IntentStudy
	default:
		return datatypes.IntentGeneral
	}
}

// KindFor maps an intent tag to its handler kind. Unknown tags map to
// KindGeneral.
func KindFor(intent datatypes.IntentTag) Kind {
	switch intent {
	case datatypes.IntentMusic:
		return KindMusic
	case datatypes.IntentFitness:
		return KindFitness
	case datatypes.IntentStudy:
		return KindStudy
	default:
		return KindGeneral
	}
}

// =============================================================================
// Handler Interface
// =============================================================================

// Handler produces responses for one intent.
//
// Description:
//
//	Handle never fails: when the utterance cannot be served it returns a
//	clarification Response with ActionPerformed false. A specialised handler
//	given an utterance of a different intent returns the default
//	clarification.
//
// Thread Safety: Implementations are safe for concurrent use.
type Handler interface {
	// Kind returns the handler variant.
	Kind() Kind

	// Persona returns the name used in greetings.
	Persona() string

	// Greet returns the personalised welcome for user.
	Greet(ctx context.Context, user datatypes.User) datatypes.Response

	// Handle answers one utterance.
	Handle(ctx context.Context, user datatypes.User, utt datatypes.Utterance) datatypes.Response

	// InteractionCount returns how many utterances the handler has answered.
	InteractionCount() int64
}

// PreferenceSource extracts preferences from utterance text.
//
// routing.PreferenceExtractor satisfies this interface.
type PreferenceSource interface {
	Extract(ctx context.Context, text string) datatypes.PreferenceSet
}

// =============================================================================
// Shared Persona
// =============================================================================

const (
	greetingTemplate   = "Hello %s! I'm %s, your trusty and faithful AI assistant."
	premiumGreetingAdd = " As a premium user, you have access to all features!"
	defaultClarify     = "I'm not sure how to help with that. Please be more specific."
	defaultConfidence  = 0.3
)

// persona carries the behavior shared by every handler kind.
type persona struct {
	kind         Kind
	name         string
	interactions atomic.Int64
}

// Kind returns the handler variant.
func (p *persona) Kind() Kind { return p.kind }

// Persona returns the persona name.
func (p *persona) Persona() string { return p.name }

// InteractionCount returns how many utterances were answered.
func (p *persona) InteractionCount() int64 { return p.interactions.Load() }

// Greet returns the greeting for user with confidence 1.0.
func (p *persona) Greet(_ context.Context, user datatypes.User) datatypes.Response {
	msg := fmt.Sprintf(greetingTemplate, user.Name(), p.name)
	if user.IsPremium() {
		msg += premiumGreetingAdd
	}
	return datatypes.MustResponse(msg, 1.0, false)
}

// serves reports whether utt belongs to this persona's intent. It also
// counts the interaction, since every Handle call starts here.
func (p *persona) serves(utt datatypes.Utterance) bool {
	p.interactions.Add(1)
	return utt.Intent() == p.kind.Intent()
}

// fallback returns the default clarification.
func (p *persona) fallback() datatypes.Response {
	handlerResponsesTotal.WithLabelValues(p.kind.String(), outcomeFallback).Inc()
	return datatypes.MustResponse(defaultClarify, defaultConfidence, false)
}

// respond records the outcome metric and builds the Response.
func (p *persona) respond(message string, confidence float64, action bool) datatypes.Response {
	outcome := outcomeClarification
	if action {
		outcome = outcomeAction
	}
	handlerResponsesTotal.WithLabelValues(p.kind.String(), outcome).Inc()
	return datatypes.MustResponse(message, confidence, action)
}

// resolvePreference returns the extracted value, else the stored profile
// value, else def.
func resolvePreference(prefs datatypes.PreferenceSet, user datatypes.User, attr, def string) string {
	if v, ok := prefs.Get(attr); ok && v != "" {
		return v
	}
	if v, ok := user.Preference(attr); ok && v != "" {
		return v
	}
	return def
}
