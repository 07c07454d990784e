/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "context_manager"

type Metrics struct {
	contextsCreated prometheus.Counter
	contextsDeleted prometheus.Counter
	contextsMoved   *prometheus.CounterVec
	moveDuration    prometheus.Histogram
	rowsCopied      prometheus.Counter
	rowsRepaired    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		contextsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "contexts_created_total",
				Help:      "Contexts created since startup",
			},
		),
		contextsDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "contexts_deleted_total",
				Help:      "Contexts deleted since startup",
			},
		),
		contextsMoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "context_moves_total",
				Help:      "Context moves since startup",
			},
			[]string{"status"},
		),
		moveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "context_move_duration_seconds",
				Help:      "Time spent moving a context",
				Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
			},
		),
		rowsCopied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rows_copied_total",
				Help:      "Rows copied by context moves",
			},
		),
		rowsRepaired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rows_repaired_total",
				Help:      "Rows changed by repair tasks",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.contextsCreated, m.contextsDeleted, m.contextsMoved, m.moveDuration, m.rowsCopied, m.rowsRepaired} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
