package reasoner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unregisteredTool labels failures of tool names the registry does not
// know, so model hallucinations cannot grow label cardinality.
const unregisteredTool = "unregistered"

// Metrics holds the prometheus collectors of the reasoning loop.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	steps            *prometheus.CounterVec
	toolFailures     *prometheus.CounterVec
	escalations      *prometheus.CounterVec
	proposalFailures prometheus.Counter
	sessions         *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Use prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reasoner",
			Name:      "steps_total",
			Help:      "Reasoning steps appended to a history, by status.",
		}, []string{"status"}),
		toolFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reasoner",
			Name:      "tool_failures_total",
			Help:      "Failed tool invocations, by tool.",
		}, []string{"tool"}),
		escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reasoner",
			Name:      "escalations_total",
			Help:      "Sessions handed to the fallback answerer after repeated tool failures, by tool.",
		}, []string{"tool"}),
		proposalFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reasoner",
			Name:      "proposal_failures_total",
			Help:      "Step proposals that failed or could not be parsed.",
		}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reasoner",
			Name:      "sessions_total",
			Help:      "Finished reasoning runs, by termination reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) step(status StepStatus) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) toolFailure(tool string) {
	if m == nil {
		return
	}
	m.toolFailures.WithLabelValues(tool).Inc()
}

func (m *Metrics) escalation(tool string) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(tool).Inc()
}

func (m *Metrics) proposalFailure() {
	if m == nil {
		return
	}
	m.proposalFailures.Inc()
}

func (m *Metrics) session(reason string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(reason).Inc()
}
