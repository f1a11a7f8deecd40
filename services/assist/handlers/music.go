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
	musicConfidence        = 0.9
	musicClarifyConfidence = 0.6
	musicPreviewSongs      = 2
	anyGenre               = "all"
)

// MusicHandler recommends songs for a mood.
//
// Description:
//
//	The mood is the extracted mood, else the first catalog mood (in catalog
//	order) found as a substring of the text. The genre is the extracted
//	genre, else the stored profile genre, else "all". A mood that is absent
//	from the catalog produces a clarification listing the catalog moods.
//
// Thread Safety: Safe for concurrent use.
type MusicHandler struct {
	persona
	knowledge *config.Knowledge
	prefs     PreferenceSource
	clarify   string
}

// NewMusicHandler creates the music handler.
//
// Inputs:
//
//	k - Loaded knowledge. Must not be nil.
//	prefs - Preference extractor. Must not be nil.
func NewMusicHandler(k *config.Knowledge, prefs PreferenceSource) *MusicHandler {
	if k == nil || prefs == nil {
		panic("NewMusicHandler: knowledge and prefs must not be nil")
	}
	return &MusicHandler{
		persona:   persona{kind: KindMusic, name: k.Persona(datatypes.IntentMusic)},
		knowledge: k,
		prefs:     prefs,
		clarify: fmt.Sprintf("I can suggest music for these moods: %s. What's your mood?",
			joinChoices(k.MoodNames())),
	}
}

// Handle recommends songs or asks for a mood.
func (h *MusicHandler) Handle(ctx context.Context, user datatypes.User, utt datatypes.Utterance) datatypes.Response {
	if !h.serves(utt) {
		return h.fallback()
	}

	prefs := h.prefs.Extract(ctx, utt.Text())
	mood, ok := prefs.Get(datatypes.AttrMood)
	if !ok {
		textLower := strings.ToLower(utt.Text())
		for _, m := range h.knowledge.MoodNames() {
			if strings.Contains(textLower, m) {
				mood = m
				break
			}
		}
	}

	songs, found := h.knowledge.Playlist(mood)
	if mood == "" || !found {
		return h.respond(h.clarify, musicClarifyConfidence, false)
	}

	genre := resolvePreference(prefs, user, datatypes.AttrGenre, anyGenre)

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your '%s' mood", mood)
	if genre != anyGenre {
		fmt.Fprintf(&b, " and preference for %s", genre)
	}
	fmt.Fprintf(&b, ", here are some recommendations: %s", strings.Join(songs[:min(musicPreviewSongs, len(songs))], ", "))
	if user.IsPremium() {
		fmt.Fprintf(&b, "\nPremium users get the full playlist: %s", strings.Join(songs, ", "))
	}

	return h.respond(b.String(), musicConfidence, true)
}

// joinChoices renders "a, b, or c".
func joinChoices(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
	}
}
