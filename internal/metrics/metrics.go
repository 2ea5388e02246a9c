// Package metrics exports quiz activity as Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/vocabquiz/internal/grading"
	"github.com/example/vocabquiz/internal/quiz"
)

const namespace = "vocabquiz"

// Recorder counts session events. It implements quiz.Observer and is safe
// for concurrent use by many sessions.
type Recorder struct {
	sessionsStarted  prometheus.Counter
	sessionsFinished prometheus.Counter
	itemsServed      prometheus.Counter
	answers          *prometheus.CounterVec
	hints            prometheus.Counter
	reveals          prometheus.Counter
	reinsertions     prometheus.Counter
	accuracy         prometheus.Histogram
}

var _ quiz.Observer = (*Recorder)(nil)

// New creates a Recorder and registers its collectors with reg
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Quiz sessions started.",
		}),
		sessionsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Quiz sessions played to the end.",
		}),
		itemsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_items_total",
			Help:      "Items queued by started sessions.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Graded answers by status.",
		}, []string{"status"}),
		hints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hints_total",
			Help:      "Hint characters revealed.",
		}),
		reveals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reveals_total",
			Help:      "Answers revealed or skipped.",
		}),
		reinsertions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reinsertions_total",
			Help:      "Missed items played again in the same session.",
		}),
		accuracy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_accuracy_percent",
			Help:      "Accuracy of finished sessions.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}

	reg.MustRegister(
		r.sessionsStarted,
		r.sessionsFinished,
		r.itemsServed,
		r.answers,
		r.hints,
		r.reveals,
		r.reinsertions,
		r.accuracy,
	)
	return r
}

// SessionStarted implements quiz.Observer
func (r *Recorder) SessionStarted(items int) {
	r.sessionsStarted.Inc()
	r.itemsServed.Add(float64(items))
}

// AnswerGraded implements quiz.Observer
func (r *Recorder) AnswerGraded(status grading.Status) {
	r.answers.WithLabelValues(string(status)).Inc()
}

// HintGiven implements quiz.Observer
func (r *Recorder) HintGiven() { r.hints.Inc() }

// AnswerRevealed implements quiz.Observer
func (r *Recorder) AnswerRevealed() { r.reveals.Inc() }

// ItemReinserted implements quiz.Observer
func (r *Recorder) ItemReinserted() { r.reinsertions.Inc() }

// SessionFinished implements quiz.Observer
func (r *Recorder) SessionFinished(summary quiz.Summary) {
	r.sessionsFinished.Inc()
	r.accuracy.Observe(summary.Accuracy)
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
