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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assist",
		Subsystem: "routing",
		Name:      "classifications_total",
		Help:      "Total utterances classified by resulting intent",
	}, []string{"intent"})

	keywordHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assist",
		Subsystem: "routing",
		Name:      "keyword_hits_total",
		Help:      "Total classifications decided by a keyword, by intent and keyword",
	}, []string{"intent", "keyword"})

	extractedAttributesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assist",
		Subsystem: "routing",
		Name:      "extracted_attributes_total",
		Help:      "Total preference attributes extracted, by attribute and value",
	}, []string{"attribute", "value"})
)

// =============================================================================
// OTel Tracer
// =============================================================================

var routingTracer = otel.Tracer("aleutian.assist.routing")
