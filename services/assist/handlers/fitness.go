// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianAssist/services/assist/config"
	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

const (
	fitnessConfidence        = 0.95
	fitnessClarifyConfidence = 0.7
)

// FitnessHandler suggests a workout plan for a type and level.
//
// Description:
//
//	The level is the extracted level, else the stored profile level, else
//	the knowledge default level. The first workout type (in table order)
//	found as a substring of the text selects the plan. A level the type does
//	not define falls back to the default-level plan.
//
// Thread Safety: Safe for concurrent use.
type FitnessHandler struct {
	persona
	fitness config.FitnessTable
	prefs   PreferenceSource
	clarify string
}

// NewFitnessHandler creates the fitness handler.
func NewFitnessHandler(k *config.Knowledge, prefs PreferenceSource) *FitnessHandler {
	if k == nil || prefs == nil {
		panic("NewFitnessHandler: knowledge and prefs must not be nil")
	}
	return &FitnessHandler{
		persona: persona{kind: KindFitness, name: k.Persona(datatypes.IntentFitness)},
		fitness: k.Fitness,
		prefs:   prefs,
		clarify: fmt.Sprintf("I can help with: %s training. What would you like to focus on?",
			joinChoices(k.WorkoutTypeNames())),
	}
}

// Handle suggests a workout or asks which kind of training is wanted.
func (h *FitnessHandler) Handle(ctx context.Context, user datatypes.User, utt datatypes.Utterance) datatypes.Response {
	if !h.serves(utt) {
		return h.fallback()
	}

	prefs := h.prefs.Extract(ctx, utt.Text())
	level := resolvePreference(prefs, user, datatypes.AttrFitnessLevel, h.fitness.DefaultLevel)

	textLower := strings.ToLower(utt.Text())
	for _, w := range h.fitness.Workouts {
		if !strings.Contains(textLower, w.Type) {
			continue
		}
		plan, ok := w.Plans[level]
		if !ok {
			plan = w.Plans[h.fitness.DefaultLevel]
		}
		msg := fmt.Sprintf("For your %s goal at %s level: %s", w.Type, level, plan)
		if user.IsPremium() {
			msg += "\nPremium users get personalized meal plans too!"
		}
		return h.respond(msg, fitnessConfidence, true)
	}

	return h.respond(h.clarify, fitnessClarifyConfidence, false)
}
