// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package assist wires the classifier, the preference extractor and the
// per-intent handlers into a Router that greets each user once per intent.
package assist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianAssist/services/assist/config"
	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
	"github.com/AleutianAI/AleutianAssist/services/assist/handlers"
	"github.com/AleutianAI/AleutianAssist/services/assist/routing"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	greetingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assist",
		Subsystem: "router",
		Name:      "greetings_total",
		Help:      "Total first-contact greetings by intent",
	}, []string{"intent"})

	routeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assist",
		Subsystem: "router",
		Name:      "route_latency_seconds",
		Help:      "Route execution latency by intent",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
	}, []string{"intent"})
)

var routerTracer = otel.Tracer("aleutian.assist.router")

// greetingSeparator joins the greeting and the handler reply.
const greetingSeparator = "\n\n"

// =============================================================================
// Router
// =============================================================================

// GreetKey identifies a greeted (user, intent) pair.
type GreetKey struct {
	UserID uuid.UUID
	Intent datatypes.IntentTag
}

// Router dispatches utterances to the handler for their intent.
//
// Description:
//
//	Holds one Handler per intent and the set of (user, intent) pairs that
//	have already been greeted. The first Route for a pair prefixes the
//	handler reply with the handler's greeting; later calls return the
//	handler reply unmodified. The greeted set only grows.
//
// Thread Safety: Safe for concurrent use. The greeted check-and-mark is
// guarded by a mutex so a pair is greeted exactly once.
type Router struct {
	classifier *routing.IntentClassifier
	extractor  *routing.PreferenceExtractor
	handlers   map[datatypes.IntentTag]handlers.Handler
	logger     *slog.Logger

	mu      sync.Mutex
	greeted map[GreetKey]struct{}
}

// NewRouter builds a Router with one handler per intent.
//
// Inputs:
//
//	k - Loaded knowledge tables. Must not be nil.
//	logger - Logger for structured output. May be nil (uses slog.Default()).
//
// Outputs:
//
//	*Router - The constructed router.
//	error - Non-nil if k is nil.
func NewRouter(k *config.Knowledge, logger *slog.Logger) (*Router, error) {
	if k == nil {
		return nil, fmt.Errorf("NewRouter: knowledge must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	extractor := routing.NewPreferenceExtractor(k, logger)
	r := &Router{
		classifier: routing.NewIntentClassifier(k, logger),
		extractor:  extractor,
		handlers:   make(map[datatypes.IntentTag]handlers.Handler, 4),
		logger:     logger,
		greeted:    make(map[GreetKey]struct{}),
	}
	for _, intent := range datatypes.AllIntents() {
		r.handlers[intent] = handlers.New(handlers.KindFor(intent), k, extractor)
	}

	logger.Info("assist router constructed",
		slog.Int("handlers", len(r.handlers)),
		slog.Int("intents", len(k.Intents)),
	)
	return r, nil
}

// Handler returns the handler serving intent, or the GENERAL handler when
// the intent is unmapped.
func (r *Router) Handler(intent datatypes.IntentTag) handlers.Handler {
	if h, ok := r.handlers[intent]; ok {
		return h
	}
	return r.handlers[datatypes.IntentGeneral]
}

// Route answers one utterance, greeting on first contact.
//
// Description:
//
//	Selects the handler for the utterance's intent. If the (user, intent)
//	pair has not been greeted, the response message is the greeting, a
//	blank line and the handler message, and the pair is marked greeted.
//	Confidence and ActionPerformed always come from the handler reply.
//
// Inputs:
//
//	ctx - Context for tracing.
//	user - Validated user profile.
//	utt - Validated utterance carrying its classified intent.
//
// Outputs:
//
//	datatypes.Response - The reply. Never fails.
//
// Thread Safety: Safe for concurrent use.
func (r *Router) Route(ctx context.Context, user datatypes.User, utt datatypes.Utterance) datatypes.Response {
	start := time.Now()

	intent := utt.Intent()
	ctx, span := routerTracer.Start(ctx, "assist.Router.Route",
		oteltrace.WithAttributes(
			attribute.String("intent", intent.String()),
			attribute.Int("text_length", len(utt.Text())),
		),
	)
	defer span.End()

	h := r.Handler(intent)
	firstContact := r.markGreeted(GreetKey{UserID: user.ID(), Intent: intent})

	reply := h.Handle(ctx, user, utt)
	resp := reply
	if firstContact {
		greeting := h.Greet(ctx, user)
		resp = datatypes.MustResponse(
			greeting.Message()+greetingSeparator+reply.Message(),
			reply.Confidence(),
			reply.ActionPerformed(),
		)
		greetingsTotal.WithLabelValues(intent.String()).Inc()
	}

	routeLatency.WithLabelValues(intent.String()).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("handler", h.Kind().String()),
		attribute.Bool("greeted", firstContact),
		attribute.Float64("confidence", resp.Confidence()),
		attribute.Bool("action_performed", resp.ActionPerformed()),
	)

	r.logger.Debug("utterance routed",
		slog.String("user_id", user.ID().String()),
		slog.String("intent", intent.String()),
		slog.String("handler", h.Persona()),
		slog.Bool("greeted", firstContact),
		slog.Float64("confidence", resp.Confidence()),
	)

	return resp
}

// Greet returns the greeting of the handler for intent without marking the
// pair as greeted.
func (r *Router) Greet(ctx context.Context, user datatypes.User, intent datatypes.IntentTag) datatypes.Response {
	return r.Handler(intent).Greet(ctx, user)
}

// Dispatch classifies text, builds the utterance and routes it.
//
// Outputs:
//
//	datatypes.Response - The reply.
//	datatypes.Utterance - The validated utterance that was routed.
//	error - Wraps datatypes.ErrInvalidArgument when text is blank.
func (r *Router) Dispatch(ctx context.Context, user datatypes.User, text string) (datatypes.Response, datatypes.Utterance, error) {
	intent := r.classifier.Classify(ctx, text)
	utt, err := datatypes.NewUtterance(text, intent, time.Time{})
	if err != nil {
		return datatypes.Response{}, datatypes.Utterance{}, fmt.Errorf("Dispatch: %w", err)
	}
	return r.Route(ctx, user, utt), utt, nil
}

// Classify returns the intent for text.
func (r *Router) Classify(ctx context.Context, text string) datatypes.IntentTag {
	return r.classifier.Classify(ctx, text)
}

// Extract returns the preferences detected in text.
func (r *Router) Extract(ctx context.Context, text string) datatypes.PreferenceSet {
	return r.extractor.Extract(ctx, text)
}

// HasGreeted reports whether the (user, intent) pair has been greeted.
func (r *Router) HasGreeted(userID uuid.UUID, intent datatypes.IntentTag) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.greeted[GreetKey{UserID: userID, Intent: intent}]
	return ok
}

// markGreeted marks key and reports whether this call was the first.
func (r *Router) markGreeted(key GreetKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.greeted[key]; ok {
		return false
	}
	r.greeted[key] = struct{}{}
	return true
}
