// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

// =============================================================================
// Embedded Knowledge Tests
// =============================================================================

func TestGetKnowledge_Embedded(t *testing.T) {
	ResetKnowledge()
	defer ResetKnowledge()

	k, err := GetKnowledge(context.Background())
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}

	wantOrder := []datatypes.IntentTag{datatypes.IntentMusic, datatypes.IntentFitness, datatypes.IntentStudy}
	if len(k.Intents) != len(wantOrder) {
		t.Fatalf("expected %d intents, got %d", len(wantOrder), len(k.Intents))
	}
	for i, want := range wantOrder {
		if k.Intents[i].Intent != want {
			t.Errorf("intents[%d]: expected %s, got %s", i, want, k.Intents[i].Intent)
		}
	}

	if got := strings.Join(k.MoodNames(), ","); got != "happy,sad,energetic,relaxing,romantic" {
		t.Errorf("unexpected mood order: %s", got)
	}
	if got := strings.Join(k.WorkoutTypeNames(), ","); got != "strength,cardio,flexibility" {
		t.Errorf("unexpected workout order: %s", got)
	}
	if got := strings.Join(k.TopicNames(), ", "); got != "oop, ai, python, data structures, algorithms" {
		t.Errorf("unexpected topic order: %s", got)
	}
	if k.Fitness.DefaultLevel != "beginner" {
		t.Errorf("expected default level beginner, got %q", k.Fitness.DefaultLevel)
	}
}

func TestGetKnowledge_Cached(t *testing.T) {
	ResetKnowledge()
	defer ResetKnowledge()

	a, err := GetKnowledge(context.Background())
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	b, err := GetKnowledge(context.Background())
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	if a != b {
		t.Error("expected the cached instance on second call")
	}
}

func TestGetKnowledge_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	if _, err := GetKnowledge(nil); err == nil {
		t.Error("expected error for nil context")
	}
}

func TestKnowledge_Lookups(t *testing.T) {
	k, err := LoadKnowledge(context.Background(), defaultKnowledgeYAML)
	if err != nil {
		t.Fatalf("LoadKnowledge failed: %v", err)
	}

	if k.Persona(datatypes.IntentMusic) != "MelodyBot" {
		t.Errorf("unexpected music persona %q", k.Persona(datatypes.IntentMusic))
	}
	if k.Persona(datatypes.IntentTag("WEATHER")) != "GeneralBot" {
		t.Errorf("expected fallback persona, got %q", k.Persona(datatypes.IntentTag("WEATHER")))
	}

	songs, ok := k.Playlist("energetic")
	if !ok || len(songs) != 3 || songs[0] != "Eye of the Tiger - Survivor" {
		t.Errorf("unexpected energetic playlist %v (ok=%v)", songs, ok)
	}
	if _, ok := k.Playlist("calm"); ok {
		t.Error("calm is extractable but must not be in the catalog")
	}
}

// =============================================================================
// LoadKnowledge Validation Tests
// =============================================================================

const minimalKnowledge = `
intents:
  - intent: MUSIC
    keywords: [Song]
personas:
  MUSIC: M
  FITNESS: F
  STUDY: S
  GENERAL: G
preferences:
  fitness_level:
    - value: Beginner
      synonyms: [Easy]
  genre:
    - value: rock
      synonyms: [rock]
  mood: [Happy]
music:
  - mood: Happy
    songs: [a]
fitness:
  workouts:
    - type: Cardio
      plans:
        Beginner: walk
study:
  - topic: OOP
    explanation: objects
`

func TestLoadKnowledge_NormalizesAndDefaults(t *testing.T) {
	k, err := LoadKnowledge(context.Background(), []byte(minimalKnowledge))
	if err != nil {
		t.Fatalf("LoadKnowledge failed: %v", err)
	}

	if k.Intents[0].Keywords[0] != "song" {
		t.Errorf("expected lower-cased keyword, got %q", k.Intents[0].Keywords[0])
	}
	if k.Preferences.FitnessLevels[0].Value != "beginner" || k.Preferences.FitnessLevels[0].Synonyms[0] != "easy" {
		t.Errorf("expected lower-cased group, got %+v", k.Preferences.FitnessLevels[0])
	}
	if k.Fitness.DefaultLevel != DefaultFitnessLevel {
		t.Errorf("expected default level %q, got %q", DefaultFitnessLevel, k.Fitness.DefaultLevel)
	}
	if k.Fitness.Workouts[0].Type != "cardio" || k.Fitness.Workouts[0].Plans["beginner"] != "walk" {
		t.Errorf("expected normalized workout, got %+v", k.Fitness.Workouts[0])
	}
	if k.Study[0].Topic != "oop" {
		t.Errorf("expected lower-cased topic, got %q", k.Study[0].Topic)
	}
	if k.Music[0].Mood != "happy" {
		t.Errorf("expected lower-cased mood, got %q", k.Music[0].Mood)
	}
}

func TestLoadKnowledge_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "unknown intent",
			mutate:  func(s string) string { return strings.Replace(s, "intent: MUSIC", "intent: WEATHER", 1) },
			wantErr: "unknown intent",
		},
		{
			name:    "general has keywords",
			mutate:  func(s string) string { return strings.Replace(s, "intent: MUSIC", "intent: GENERAL", 1) },
			wantErr: "GENERAL is the fallback",
		},
		{
			name:    "empty keywords",
			mutate:  func(s string) string { return strings.Replace(s, "keywords: [Song]", "keywords: []", 1) },
			wantErr: "keywords must not be empty",
		},
		{
			name:    "missing persona",
			mutate:  func(s string) string { return strings.Replace(s, "  STUDY: S\n", "", 1) },
			wantErr: "missing persona for STUDY",
		},
		{
			name:    "empty genre synonyms",
			mutate:  func(s string) string { return strings.Replace(s, "synonyms: [rock]", "synonyms: []", 1) },
			wantErr: "preferences.genre[0] (rock): synonyms must not be empty",
		},
		{
			name:    "mood without songs",
			mutate:  func(s string) string { return strings.Replace(s, "songs: [a]", "songs: []", 1) },
			wantErr: "songs must not be empty",
		},
		{
			name:    "workout missing default plan",
			mutate:  func(s string) string { return strings.Replace(s, "Beginner: walk", "advanced: run", 1) },
			wantErr: "missing plan for default level",
		},
		{
			name:    "empty explanation",
			mutate:  func(s string) string { return strings.Replace(s, "explanation: objects", "explanation: \"\"", 1) },
			wantErr: "explanation must not be empty",
		},
		{
			name:    "malformed yaml",
			mutate:  func(s string) string { return s + "\n  - : [" },
			wantErr: "parsing YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKnowledge(context.Background(), []byte(tt.mutate(minimalKnowledge)))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadKnowledge_EmptyAndOversized(t *testing.T) {
	if _, err := LoadKnowledge(context.Background(), nil); err == nil {
		t.Error("expected error for empty data")
	}

	big := make([]byte, MaxYAMLFileSize+1)
	if _, err := LoadKnowledge(context.Background(), big); err == nil || !strings.Contains(err.Error(), "maximum size") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestLoadKnowledgeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	if err := os.WriteFile(path, []byte(minimalKnowledge), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	k, err := LoadKnowledgeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadKnowledgeFile failed: %v", err)
	}
	if k.Persona(datatypes.IntentGeneral) != "G" {
		t.Errorf("unexpected persona %q", k.Persona(datatypes.IntentGeneral))
	}

	if _, err := LoadKnowledgeFile(context.Background(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
