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
	"github.com/AleutianAI/AleutianAssist/services/assist/routing"
)

const (
	studyConfidence        = 0.9
	studyClarifyConfidence = 0.6
)

type studyEntry struct {
	pattern     routing.WordPattern
	explanation string
}

// StudyHandler explains topics from its knowledge base.
//
// Description:
//
//	Topics match only as whole words, in table order, so "oop" matches
//	"explain oop" but not "cooperation".
//
// Thread Safety: Safe for concurrent use.
type StudyHandler struct {
	persona
	topics  []studyEntry
	clarify string
}

// NewStudyHandler creates the study handler.
func NewStudyHandler(k *config.Knowledge) *StudyHandler {
	if k == nil {
		panic("NewStudyHandler: knowledge must not be nil")
	}
	topics := make([]studyEntry, len(k.Study))
	for i, s := range k.Study {
		topics[i] = studyEntry{pattern: routing.NewWordPattern(s.Topic), explanation: s.Explanation}
	}
	return &StudyHandler{
		persona: persona{kind: KindStudy, name: k.Persona(datatypes.IntentStudy)},
		topics:  topics,
		clarify: fmt.Sprintf("I can explain: %s. What would you like to learn about?",
			strings.Join(k.TopicNames(), ", ")),
	}
}

// Handle explains the first matching topic or lists the known topics.
func (h *StudyHandler) Handle(_ context.Context, user datatypes.User, utt datatypes.Utterance) datatypes.Response {
	if !h.serves(utt) {
		return h.fallback()
	}

	textLower := strings.ToLower(utt.Text())
	for _, t := range h.topics {
		if !t.pattern.Match(textLower) {
			continue
		}
		msg := fmt.Sprintf("Here's an explanation of %s: %s", t.pattern.Phrase(), t.explanation)
		if user.IsPremium() {
			msg += "\nPremium users get detailed examples and practice problems!"
		}
		return h.respond(msg, studyConfidence, true)
	}

	return h.respond(h.clarify, studyClarifyConfidence, false)
}
