package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	ChatMessageTotal           = "chat_messages_total"
	QuestTransitionTotal       = "quest_transitions_total"
	ProposerFailureTotal       = "proposer_failures_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		ChatMessageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChatMessageTotal,
			Help: "Count of all observed chat messages",
		}, []string{"conversation_id"}),
		QuestTransitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QuestTransitionTotal,
			Help: "Count of all quest lifecycle transitions",
		}, []string{"status"}),
		ProposerFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ProposerFailureTotal,
			Help: "Count of all failed quest proposal calls",
		}, []string{"reason"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}
)
