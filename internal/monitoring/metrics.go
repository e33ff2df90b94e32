package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
)

// Metrics counts issuance and scan outcomes. Each server owns its registry so
// tests can build several without duplicate registration panics.
type Metrics struct {
	ticketsIssued *prometheus.CounterVec
	scans         *prometheus.CounterVec
	feedClients   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ticketsIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickets_issued_total",
				Help: "Total tickets issued per category",
			},
			[]string{"category"},
		),
		scans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_scans_total",
				Help: "Total scan attempts per outcome",
			},
			[]string{"reason"},
		),
		feedClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scan_feed_clients",
				Help: "Current number of connected scan feed clients",
			},
		),
	}
}

func (m *Metrics) TicketIssued(category domain.Category) {
	m.ticketsIssued.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) ScanCompleted(reason domain.ScanReason) {
	m.scans.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) FeedClientConnected() {
	m.feedClients.Inc()
}

func (m *Metrics) FeedClientDisconnected() {
	m.feedClients.Dec()
}
