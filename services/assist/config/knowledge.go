// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the keyword vocabularies and static knowledge tables
// that drive intent classification, preference extraction and the handlers.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

// =============================================================================
// Embedded Default Knowledge
// =============================================================================

//go:embed knowledge.yaml
var defaultKnowledgeYAML []byte

var knowledgeTracer = otel.Tracer("aleutian.assist.config")

// =============================================================================
// Knowledge Types
// =============================================================================

// Knowledge is the complete set of tables used by the dispatcher.
//
// Description:
//
//	All slices are ordered; consumers scan them in declaration order and the
//	first match wins. Keywords, synonyms, moods, workout types and topics are
//	lower-cased at load time so matching can run against lower-cased input.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Knowledge struct {
	// Intents lists the keyword set per intent in classification order.
	Intents []IntentKeywords `yaml:"intents"`

	// Personas maps each intent to the persona name used in greetings.
	Personas map[datatypes.IntentTag]string `yaml:"personas"`

	// Preferences holds the extractor vocabularies.
	Preferences PreferenceVocabulary `yaml:"preferences"`

	// Music is the mood catalog in lookup order.
	Music []MoodPlaylist `yaml:"music"`

	// Fitness holds the workout plans.
	Fitness FitnessTable `yaml:"fitness"`

	// Study is the topic knowledge base in lookup order.
	Study []StudyTopic `yaml:"study"`
}

// IntentKeywords binds a keyword list to an intent.
type IntentKeywords struct {
	Intent   datatypes.IntentTag `yaml:"intent"`
	Keywords []string            `yaml:"keywords"`
}

// KeywordGroup maps a set of synonyms to one canonical value.
type KeywordGroup struct {
	Value    string   `yaml:"value"`
	Synonyms []string `yaml:"synonyms"`
}

// PreferenceVocabulary holds the keyword groups for each extracted attribute.
type PreferenceVocabulary struct {
	FitnessLevels []KeywordGroup `yaml:"fitness_level"`
	Genres        []KeywordGroup `yaml:"genre"`
	Moods         []string       `yaml:"mood"`
}

// MoodPlaylist is one catalog entry: a mood and its songs.
type MoodPlaylist struct {
	Mood  string   `yaml:"mood"`
	Songs []string `yaml:"songs"`
}

// FitnessTable holds workout plans keyed by type and level.
type FitnessTable struct {
	// DefaultLevel is used when neither the utterance nor the profile names a
	// level, and as the fallback plan when a type lacks the resolved level.
	DefaultLevel string `yaml:"default_level"`

	// Workouts lists the workout types in lookup order.
	Workouts []WorkoutType `yaml:"workouts"`
}

// WorkoutType maps fitness levels to a plan description.
type WorkoutType struct {
	Type  string            `yaml:"type"`
	Plans map[string]string `yaml:"plans"`
}

// StudyTopic is one knowledge-base entry.
type StudyTopic struct {
	Topic       string `yaml:"topic"`
	Explanation string `yaml:"explanation"`
}

// =============================================================================
// Lookups
// =============================================================================

// Persona returns the persona name for an intent, falling back to the
// GENERAL persona.
func (k *Knowledge) Persona(intent datatypes.IntentTag) string {
	if name, ok := k.Personas[intent]; ok && name != "" {
		return name
	}
	return k.Personas[datatypes.IntentGeneral]
}

// Playlist returns the songs for a catalog mood.
func (k *Knowledge) Playlist(mood string) ([]string, bool) {
	for _, p := range k.Music {
		if p.Mood == mood {
			return p.Songs, true
		}
	}
	return nil, false
}

// MoodNames returns the catalog moods in declaration order.
func (k *Knowledge) MoodNames() []string {
	names := make([]string, len(k.Music))
	for i, p := range k.Music {
		names[i] = p.Mood
	}
	return names
}

// WorkoutTypeNames returns the workout types in declaration order.
func (k *Knowledge) WorkoutTypeNames() []string {
	names := make([]string, len(k.Fitness.Workouts))
	for i, w := range k.Fitness.Workouts {
		names[i] = w.Type
	}
	return names
}

// TopicNames returns the study topics in declaration order.
func (k *Knowledge) TopicNames() []string {
	names := make([]string, len(k.Study))
	for i, s := range k.Study {
		names[i] = s.Topic
	}
	return names
}

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultFitnessLevel is applied when fitness.default_level is missing.
	DefaultFitnessLevel = "beginner"

	// MaxYAMLFileSize bounds the size of a knowledge document.
	MaxYAMLFileSize = 1 << 20
)

// =============================================================================
// Singleton Knowledge
// =============================================================================

var (
	knowledgeMu      sync.RWMutex
	knowledgeOnce    sync.Once
	cachedKnowledge  *Knowledge
	knowledgeLoadErr error
)

// GetKnowledge returns the cached embedded knowledge tables.
//
// Description:
//
//	Loads the embedded knowledge.yaml on first call and caches the result
//	(or the load error) for subsequent calls.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*Knowledge - The loaded tables. Never nil on success.
//	error - Non-nil if loading or validation failed.
//
// Thread Safety: Safe for concurrent use via sync.Once.
func GetKnowledge(ctx context.Context) (*Knowledge, error) {
	if ctx == nil {
		return nil, fmt.Errorf("GetKnowledge: ctx must not be nil")
	}

	knowledgeMu.RLock()
	if cachedKnowledge != nil || knowledgeLoadErr != nil {
		k, err := cachedKnowledge, knowledgeLoadErr
		knowledgeMu.RUnlock()
		return k, err
	}
	knowledgeMu.RUnlock()

	knowledgeMu.Lock()
	defer knowledgeMu.Unlock()

	knowledgeOnce.Do(func() {
		cachedKnowledge, knowledgeLoadErr = LoadKnowledge(ctx, defaultKnowledgeYAML)
	})

	return cachedKnowledge, knowledgeLoadErr
}

// ResetKnowledge clears the cached knowledge so tests can reload it.
//
// Thread Safety: Safe for concurrent use.
func ResetKnowledge() {
	knowledgeMu.Lock()
	defer knowledgeMu.Unlock()
	cachedKnowledge = nil
	knowledgeLoadErr = nil
	knowledgeOnce = sync.Once{}
}

// LoadKnowledgeFile reads and validates a knowledge document from disk.
//
// Inputs:
//
//	ctx - Context for tracing.
//	path - Path to a YAML file with the same layout as the embedded default.
//
// Outputs:
//
//	*Knowledge - The validated tables.
//	error - Non-nil if the file cannot be read, parsed or validated.
func LoadKnowledgeFile(ctx context.Context, path string) (*Knowledge, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("LoadKnowledgeFile: %w", err)
	}
	if info.Size() > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadKnowledgeFile: %s exceeds maximum size (%d > %d)", path, info.Size(), MaxYAMLFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadKnowledgeFile: %w", err)
	}
	return LoadKnowledge(ctx, data)
}

// LoadKnowledge parses and validates knowledge tables from YAML bytes.
//
// Description:
//
//	Parses the YAML, normalizes every matchable string to lower case,
//	applies defaults for missing fields and validates the tables for
//	consistency (known intents, non-empty vocabularies, plans defined for
//	the default level, personas for every intent).
//
// Inputs:
//
//	ctx - Context for tracing.
//	data - Raw YAML bytes to parse.
//
// Outputs:
//
//	*Knowledge - The validated tables.
//	error - Non-nil if parsing or validation fails.
func LoadKnowledge(ctx context.Context, data []byte) (*Knowledge, error) {
	_, span := knowledgeTracer.Start(ctx, "config.LoadKnowledge")
	defer span.End()

	if len(data) == 0 {
		return nil, fmt.Errorf("LoadKnowledge: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadKnowledge: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var k Knowledge
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("LoadKnowledge: parsing YAML: %w", err)
	}

	normalizeKnowledge(&k)

	if k.Fitness.DefaultLevel == "" {
		k.Fitness.DefaultLevel = DefaultFitnessLevel
	}

	if err := validateKnowledge(&k); err != nil {
		return nil, fmt.Errorf("LoadKnowledge: validation: %w", err)
	}

	span.SetAttributes(
		attribute.Int("intents", len(k.Intents)),
		attribute.Int("moods", len(k.Music)),
		attribute.Int("workout_types", len(k.Fitness.Workouts)),
		attribute.Int("topics", len(k.Study)),
	)

	slog.Info("assist knowledge loaded",
		slog.Int("intents", len(k.Intents)),
		slog.Int("moods", len(k.Music)),
		slog.Int("workout_types", len(k.Fitness.Workouts)),
		slog.Int("topics", len(k.Study)),
	)

	return &k, nil
}

// normalizeKnowledge lower-cases every string that is matched against input.
func normalizeKnowledge(k *Knowledge) {
	for i := range k.Intents {
		k.Intents[i].Keywords = lowerAll(k.Intents[i].Keywords)
	}
	for i := range k.Preferences.FitnessLevels {
		g := &k.Preferences.FitnessLevels[i]
		g.Value = normalize(g.Value)
		g.Synonyms = lowerAll(g.Synonyms)
	}
	for i := range k.Preferences.Genres {
		g := &k.Preferences.Genres[i]
		g.Value = normalize(g.Value)
		g.Synonyms = lowerAll(g.Synonyms)
	}
	k.Preferences.Moods = lowerAll(k.Preferences.Moods)
	for i := range k.Music {
		k.Music[i].Mood = normalize(k.Music[i].Mood)
	}
	k.Fitness.DefaultLevel = normalize(k.Fitness.DefaultLevel)
	for i := range k.Fitness.Workouts {
		w := &k.Fitness.Workouts[i]
		w.Type = normalize(w.Type)
		plans := make(map[string]string, len(w.Plans))
		for level, plan := range w.Plans {
			plans[normalize(level)] = plan
		}
		w.Plans = plans
	}
	for i := range k.Study {
		k.Study[i].Topic = normalize(k.Study[i].Topic)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// validateKnowledge checks all tables for consistency.
func validateKnowledge(k *Knowledge) error {
	seen := make(map[datatypes.IntentTag]bool, len(k.Intents))
	for i, ik := range k.Intents {
		if !ik.Intent.Valid() {
			return fmt.Errorf("intents[%d]: unknown intent %q", i, ik.Intent)
		}
		if ik.Intent == datatypes.IntentGeneral {
			return fmt.Errorf("intents[%d]: GENERAL is the fallback and takes no keywords", i)
		}
		if seen[ik.Intent] {
			return fmt.Errorf("intents[%d]: duplicate intent %s", i, ik.Intent)
		}
		seen[ik.Intent] = true
		if len(ik.Keywords) == 0 {
			return fmt.Errorf("intents[%d] (%s): keywords must not be empty", i, ik.Intent)
		}
	}

	for _, intent := range datatypes.AllIntents() {
		if strings.TrimSpace(k.Personas[intent]) == "" {
			return fmt.Errorf("personas: missing persona for %s", intent)
		}
	}

	if err := validateGroups("preferences.fitness_level", k.Preferences.FitnessLevels); err != nil {
		return err
	}
	if err := validateGroups("preferences.genre", k.Preferences.Genres); err != nil {
		return err
	}
	if len(k.Preferences.Moods) == 0 {
		return fmt.Errorf("preferences.mood: must not be empty")
	}

	if len(k.Music) == 0 {
		return fmt.Errorf("music: catalog must not be empty")
	}
	for i, p := range k.Music {
		if p.Mood == "" {
			return fmt.Errorf("music[%d]: mood must not be empty", i)
		}
		if len(p.Songs) == 0 {
			return fmt.Errorf("music[%d] (%s): songs must not be empty", i, p.Mood)
		}
	}

	if len(k.Fitness.Workouts) == 0 {
		return fmt.Errorf("fitness.workouts: must not be empty")
	}
	for i, w := range k.Fitness.Workouts {
		if w.Type == "" {
			return fmt.Errorf("fitness.workouts[%d]: type must not be empty", i)
		}
		if w.Plans[k.Fitness.DefaultLevel] == "" {
			return fmt.Errorf("fitness.workouts[%d] (%s): missing plan for default level %q", i, w.Type, k.Fitness.DefaultLevel)
		}
	}

	if len(k.Study) == 0 {
		return fmt.Errorf("study: topics must not be empty")
	}
	for i, s := range k.Study {
		if s.Topic == "" {
			return fmt.Errorf("study[%d]: topic must not be empty", i)
		}
		if strings.TrimSpace(s.Explanation) == "" {
			return fmt.Errorf("study[%d] (%s): explanation must not be empty", i, s.Topic)
		}
	}

	return nil
}

func validateGroups(path string, groups []KeywordGroup) error {
	if len(groups) == 0 {
		return fmt.Errorf("%s: must not be empty", path)
	}
	for i, g := range groups {
		if g.Value == "" {
			return fmt.Errorf("%s[%d]: value must not be empty", path, i)
		}
		if len(g.Synonyms) == 0 {
			return fmt.Errorf("%s[%d] (%s): synonyms must not be empty", path, i, g.Value)
		}
	}
	return nil
}
