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

	"github.com/AleutianAI/AleutianAssist/services/assist/config"
	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

// GeneralHandler always answers with the default clarification.
type GeneralHandler struct {
	persona
}

// NewGeneralHandler creates the fallback handler.
func NewGeneralHandler(k *config.Knowledge) *GeneralHandler {
	if k == nil {
		panic("NewGeneralHandler: knowledge must not be nil")
	}
	return &GeneralHandler{
		persona: persona{kind: KindGeneral, name: k.Persona(datatypes.IntentGeneral)},
	}
}

// Handle returns the default clarification regardless of the utterance.
func (h *GeneralHandler) Handle(_ context.Context, _ datatypes.User, _ datatypes.Utterance) datatypes.Response {
	h.interactions.Add(1)
	return h.fallback()
}

// New builds the handler for kind.
//
// Inputs:
//
//	kind - The variant to build. Unknown kinds build a GeneralHandler.
//	k - Loaded knowledge. Must not be nil.
//	prefs - Preference extractor used by the music and fitness handlers.
func New(kind Kind, k *config.Knowledge, prefs PreferenceSource) Handler {
	switch kind {
	case KindMusic:
		return NewMusicHandler(k, prefs)
	case KindFitness:
		return NewFitnessHandler(k, prefs)
	case KindStudy:
		return NewStudyHandler(k)
	default:
		return NewGeneralHandler(k)
	}
}
