// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Sentinel Errors
// =============================================================================

// ErrInvalidArgument is wrapped by every constructor rejection: wrong or
// out-of-range values such as an empty name, a non-positive age, empty text
// or a confidence outside [0, 1].
var ErrInvalidArgument = errors.New("invalid argument")

// validate is shared by all constructors. validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type userFields struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age" validate:"gt=0"`
}

type utteranceFields struct {
	Text   string `json:"text" validate:"required"`
	Intent string `json:"intent" validate:"oneof=MUSIC FITNESS STUDY GENERAL"`
}

type responseFields struct {
	Message    string  `json:"message" validate:"required"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// =============================================================================
// Constructors
// =============================================================================

// NewUser validates the profile fields and returns an immutable User with a
// freshly assigned identity.
//
// Description:
//
//	The name is trimmed before validation. The preference map is copied so
//	later mutation by the caller does not leak into the profile. A nil map is
//	treated as empty.
//
// Inputs:
//
//	name - Display name. Must be non-empty after trimming.
//	age - Age in years. Must be positive.
//	preferences - Stored preferences such as "genre" or "fitness_level". May be nil.
//	premium - Whether the user holds a premium account.
//
// Outputs:
//
//	User - The validated profile.
//	error - Wraps ErrInvalidArgument on rejection.
func NewUser(name string, age int, preferences map[string]string, premium bool) (User, error) {
	name = strings.TrimSpace(name)
	if err := validate.Struct(userFields{Name: name, Age: age}); err != nil {
		return User{}, invalidArgument("user", err)
	}

	prefs := make(map[string]string, len(preferences))
	maps.Copy(prefs, preferences)

	return User{
		id:          uuid.New(),
		name:        name,
		age:         age,
		preferences: prefs,
		premium:     premium,
	}, nil
}

// NewUtterance validates one user turn.
//
// Inputs:
//
//	text - Raw input. Must be non-empty after trimming.
//	intent - Intent computed by the classifier. Must be a declared tag.
//	createdAt - Creation time. The zero value means now.
//
// Outputs:
//
//	Utterance - The validated utterance holding the trimmed text.
//	error - Wraps ErrInvalidArgument on rejection.
func NewUtterance(text string, intent IntentTag, createdAt time.Time) (Utterance, error) {
	text = strings.TrimSpace(text)
	if err := validate.Struct(utteranceFields{Text: text, Intent: string(intent)}); err != nil {
		return Utterance{}, invalidArgument("utterance", err)
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Utterance{text: text, intent: intent, createdAt: createdAt}, nil
}

// NewResponse validates a handler reply.
//
// Outputs:
//
//	Response - The validated response.
//	error - Wraps ErrInvalidArgument when the message is empty or the
//	        confidence falls outside [0, 1].
func NewResponse(message string, confidence float64, actionPerformed bool) (Response, error) {
	if err := validate.Struct(responseFields{Message: message, Confidence: confidence}); err != nil {
		return Response{}, invalidArgument("response", err)
	}
	return Response{message: message, confidence: confidence, actionPerformed: actionPerformed}, nil
}

// MustResponse is NewResponse for fixed templates whose values are known to
// be valid. It panics on rejection.
func MustResponse(message string, confidence float64, actionPerformed bool) Response {
	r, err := NewResponse(message, confidence, actionPerformed)
	if err != nil {
		panic(err)
	}
	return r
}

// invalidArgument renders validator field errors into an ErrInvalidArgument.
func invalidArgument(kind string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArgument, kind, err)
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidArgument, kind, strings.Join(parts, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " must not be empty"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
