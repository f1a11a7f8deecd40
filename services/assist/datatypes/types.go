// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the immutable value types exchanged between the
// dispatcher core and its callers: users, utterances, responses, intent tags
// and extracted preference sets.
//
// Thread Safety:
//
//	All values are immutable after construction and safe to share.
package datatypes

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Intent Tags
// =============================================================================

// IntentTag is the coarse category assigned to an utterance.
type IntentTag string

const (
	IntentMusic   IntentTag = "MUSIC"
	IntentFitness IntentTag = "FITNESS"
	IntentStudy   IntentTag = "STUDY"
	IntentGeneral IntentTag = "GENERAL"
)

// AllIntents returns every intent tag in declaration order.
func AllIntents() []IntentTag {
	return []IntentTag{IntentMusic, IntentFitness, IntentStudy, IntentGeneral}
}

// String returns the tag value.
func (t IntentTag) String() string {
	return string(t)
}

// Valid reports whether t is one of the four declared tags.
func (t IntentTag) Valid() bool {
	switch t {
	case IntentMusic, IntentFitness, IntentStudy, IntentGeneral:
		return true
	default:
		return false
	}
}

// ParseIntentTag converts a case-insensitive name into an IntentTag.
//
// Outputs:
//
//	IntentTag - The parsed tag.
//	error - Wraps ErrInvalidArgument for unknown names.
func ParseIntentTag(s string) (IntentTag, error) {
	tag := IntentTag(strings.ToUpper(strings.TrimSpace(s)))
	if !tag.Valid() {
		return "", fmt.Errorf("%w: unknown intent %q", ErrInvalidArgument, s)
	}
	return tag, nil
}

// =============================================================================
// Preferences
// =============================================================================

// Preference attribute names shared by the extractor, the handlers and the
// stored user profile.
const (
	AttrFitnessLevel = "fitness_level"
	AttrGenre        = "genre"
	AttrMood         = "mood"
)

// PreferenceSet maps an attribute name to the value detected in one
// utterance. Attributes that were not detected are absent.
type PreferenceSet map[string]string

// Get returns the value for attr and whether it was detected.
func (p PreferenceSet) Get(attr string) (string, bool) {
	v, ok := p[attr]
	return v, ok
}

// =============================================================================
// User
// =============================================================================

// User is a validated user profile. Build it with NewUser.
type User struct {
	id          uuid.UUID
	name        string
	age         int
	preferences map[string]string
	premium     bool
}

// ID returns the opaque identity assigned at construction.
func (u User) ID() uuid.UUID { return u.id }

// Name returns the trimmed display name.
func (u User) Name() string { return u.name }

// Age returns the user's age in years.
func (u User) Age() int { return u.age }

// IsPremium reports whether the user holds a premium account.
func (u User) IsPremium() bool { return u.premium }

// Preference returns a stored profile preference.
func (u User) Preference(key string) (string, bool) {
	v, ok := u.preferences[key]
	return v, ok
}

// Preferences returns a copy of the stored profile preferences.
func (u User) Preferences() map[string]string {
	return maps.Clone(u.preferences)
}

func (u User) String() string {
	return fmt.Sprintf("UserProfile(name='%s', age=%d, premium=%t)", u.name, u.age, u.premium)
}

// =============================================================================
// Utterance
// =============================================================================

// Utterance is one user turn: trimmed text, its intent and when it was made.
type Utterance struct {
	text      string
	intent    IntentTag
	createdAt time.Time
}

// Text returns the trimmed input text.
func (u Utterance) Text() string { return u.text }

// Intent returns the intent tag computed for the text.
func (u Utterance) Intent() IntentTag { return u.intent }

// CreatedAt returns the creation timestamp.
func (u Utterance) CreatedAt() time.Time { return u.createdAt }

func (u Utterance) String() string {
	return fmt.Sprintf("Request(input='%s', type=%s, time=%s)",
		u.text, u.intent, u.createdAt.Format(time.DateTime))
}

// =============================================================================
// Response
// =============================================================================

// Response is the value returned by every handler call.
type Response struct {
	message         string
	confidence      float64
	actionPerformed bool
}

// Message returns the reply text. Never empty.
func (r Response) Message() string { return r.message }

// Confidence returns a score in [0.0, 1.0].
func (r Response) Confidence() float64 { return r.confidence }

// ActionPerformed reports whether a concrete recommendation was produced
// rather than a clarification request.
func (r Response) ActionPerformed() bool { return r.actionPerformed }

func (r Response) String() string {
	return fmt.Sprintf("Response(message='%s', confidence=%.2f, actionPerformed=%t)",
		r.message, r.confidence, r.actionPerformed)
}
