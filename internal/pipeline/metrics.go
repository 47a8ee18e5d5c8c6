package pipeline

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zombor/statement-parser/internal/scanning"
	"github.com/zombor/statement-parser/internal/statement"
)

// Metrics counts pipeline outcomes
type Metrics struct {
	transcripts     *prometheus.CounterVec
	classifications *prometheus.CounterVec
}

// NewMetrics creates the pipeline counters and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transcripts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement_parser",
			Name:      "transcripts_total",
			Help:      "Transcripts produced, by how the text was recovered.",
		}, []string{"quality"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement_parser",
			Name:      "classifications_total",
			Help:      "Statements classified, by issuer.",
		}, []string{"bank"}),
	}

	for _, c := range []prometheus.Collector{m.transcripts, m.classifications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeTranscript(q scanning.Quality) {
	if m == nil {
		return
	}
	m.transcripts.WithLabelValues(q.String()).Inc()
}

func (m *Metrics) observeBank(b statement.Bank) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(bankLabel(b)).Inc()
}

func bankLabel(b statement.Bank) string {
	if b == statement.Unknown {
		return "unknown"
	}
	return strings.ToLower(string(b))
}
