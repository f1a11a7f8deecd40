// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routing

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AleutianAI/AleutianAssist/services/assist/config"
	"github.com/AleutianAI/AleutianAssist/services/assist/datatypes"
)

func testKnowledge(t *testing.T) *config.Knowledge {
	t.Helper()
	k, err := config.GetKnowledge(context.Background())
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	return k
}

// =============================================================================
// IntentClassifier Tests
// =============================================================================

func TestClassify_Scenarios(t *testing.T) {
	c := NewIntentClassifier(testKnowledge(t), slog.Default())
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want datatypes.IntentTag
	}{
		{"music keyword", "Play some energetic music", datatypes.IntentMusic},
		{"fitness keyword", "I need an advanced cardio workout", datatypes.IntentFitness},
		{"study keyword", "Explain OOP concepts", datatypes.IntentStudy},
		{"case insensitive", "GYM time", datatypes.IntentFitness},
		{"substring match", "my homeworks are late", datatypes.IntentStudy},
		{"music beats fitness", "play music for my workout", datatypes.IntentMusic},
		{"fitness beats study", "explain this exercise", datatypes.IntentFitness},
		{"no keyword", "How are you today?", datatypes.IntentGeneral},
		{"question without keyword", "What is python?", datatypes.IntentGeneral},
		{"empty", "", datatypes.IntentGeneral},
		{"whitespace", "   ", datatypes.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(ctx, tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_TotalAndGeneralIffNoKeyword(t *testing.T) {
	k := testKnowledge(t)
	c := NewIntentClassifier(k, nil)
	ctx := context.Background()

	inputs := []string{
		"", "hello", "SONG", "gymnastics", "topical", "🎵🎵", "a\nb\tc",
		"the weather is nice", "learned something", "cardiology",
	}

	for _, in := range inputs {
		got := c.Classify(ctx, in)
		if !got.Valid() {
			t.Errorf("Classify(%q) returned undeclared tag %q", in, got)
		}

		hasKeyword := false
		for _, ik := range k.Intents {
			if _, ok := matchCompiledPatterns(strings.ToLower(in), compilePatterns(ik.Keywords, slog.Default())); ok {
				hasKeyword = true
				break
			}
		}
		if (got == datatypes.IntentGeneral) == hasKeyword {
			t.Errorf("Classify(%q) = %s but keyword present = %v", in, got, hasKeyword)
		}
	}
}

func TestClassify_RecordsMetric(t *testing.T) {
	c := NewIntentClassifier(testKnowledge(t), nil)

	before := testutil.ToFloat64(classificationsTotal.WithLabelValues("GENERAL"))
	c.Classify(context.Background(), "nothing to see here")
	after := testutil.ToFloat64(classificationsTotal.WithLabelValues("GENERAL"))

	if after-before != 1 {
		t.Errorf("expected GENERAL counter to increase by 1, got %v", after-before)
	}
}

func TestNewIntentClassifier_NilKnowledgePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil knowledge")
		}
	}()
	NewIntentClassifier(nil, nil)
}

// =============================================================================
// PreferenceExtractor Tests
// =============================================================================

func TestExtract_Scenarios(t *testing.T) {
	e := NewPreferenceExtractor(testKnowledge(t), slog.Default())
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "all three",
			text: "beginner jazz happy",
			want: map[string]string{"fitness_level": "beginner", "genre": "jazz", "mood": "happy"},
		},
		{
			name: "order independent",
			text: "happy jazz beginner",
			want: map[string]string{"fitness_level": "beginner", "genre": "jazz", "mood": "happy"},
		},
		{
			name: "synonym maps to canonical value",
			text: "something with an orchestra, medium pace",
			want: map[string]string{"fitness_level": "intermediate", "genre": "classical"},
		},
		{
			name: "mood only",
			text: "Play some energetic music",
			want: map[string]string{"mood": "energetic"},
		},
		{
			name: "level only",
			text: "I need an advanced cardio workout",
			want: map[string]string{"fitness_level": "advanced"},
		},
		{
			name: "first declared group wins",
			text: "easy but intense",
			want: map[string]string{"fitness_level": "beginner"},
		},
		{
			name: "mood outside catalog still extracted",
			text: "I feel calm",
			want: map[string]string{"mood": "calm"},
		},
		{
			name: "nothing",
			text: "How are you today?",
			want: map[string]string{},
		},
		{
			name: "empty",
			text: "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(ctx, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for attr, want := range tt.want {
				if v, ok := got.Get(attr); !ok || v != want {
					t.Errorf("Extract(%q)[%s] = %q (ok=%v), want %q", tt.text, attr, v, ok, want)
				}
			}
		})
	}
}

func TestExtract_RecordsMetric(t *testing.T) {
	e := NewPreferenceExtractor(testKnowledge(t), nil)

	before := testutil.ToFloat64(extractedAttributesTotal.WithLabelValues("genre", "rock"))
	e.Extract(context.Background(), "loud guitar please")
	after := testutil.ToFloat64(extractedAttributesTotal.WithLabelValues("genre", "rock"))

	if after-before != 1 {
		t.Errorf("expected genre=rock counter to increase by 1, got %v", after-before)
	}
}

// =============================================================================
// Pattern Tests
// =============================================================================

func TestWordPattern(t *testing.T) {
	tests := []struct {
		phrase string
		text   string
		want   bool
	}{
		{"oop", "explain oop concepts", true},
		{"oop", "cooperation matters", false},
		{"oop", "oop", true},
		{"ai", "tell me about ai.", true},
		{"ai", "explain the rain", false},
		{"data structures", "explain data structures please", true},
		{"data structures", "explain data  structures please", false},
		{"python", "what is python?", true},
	}

	for _, tt := range tests {
		t.Run(tt.phrase+"/"+tt.text, func(t *testing.T) {
			if got := NewWordPattern(tt.phrase).Match(tt.text); got != tt.want {
				t.Errorf("NewWordPattern(%q).Match(%q) = %v, want %v", tt.phrase, tt.text, got, tt.want)
			}
		})
	}
}

func TestCompilePatterns_RegexAndFallback(t *testing.T) {
	patterns := compilePatterns([]string{"play.*list", "bad.*[", "Song"}, slog.Default())

	if patterns[0].regex == nil {
		t.Fatal("expected regex for .* pattern")
	}
	if !matchCompiledPattern("play my whole list", patterns[0]) {
		t.Error("expected regex match")
	}
	if patterns[1].regex != nil {
		t.Error("expected invalid regex to fall back to substring")
	}
	if kw, ok := matchCompiledPatterns("one more song", patterns); !ok || kw != "song" {
		t.Errorf("expected lower-cased keyword match, got %q (ok=%v)", kw, ok)
	}
}

func TestTruncateForLog(t *testing.T) {
	if got := truncateForLog("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateForLog("0123456789abc", 10); got != "0123456789..." {
		t.Errorf("got %q", got)
	}
}
