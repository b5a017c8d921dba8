package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the coordinator's prometheus collectors. Pass a dedicated
// registry in tests to avoid duplicate registration.
type Metrics struct {
	ActiveRooms     prometheus.Gauge
	JoinsTotal      prometheus.Counter
	JoinRejections  prometheus.Counter
	RoomsExpired    prometheus.Counter
	EventsFannedOut *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_rooms_active",
			Help: "Number of rooms currently live in the registry.",
		}),
		JoinsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_joins_total",
			Help: "Total admitted joins.",
		}),
		JoinRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_join_rejections_total",
			Help: "Joins rejected by the capacity gate.",
		}),
		RoomsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "huddle_rooms_expired_total",
			Help: "Rooms destroyed by lifetime expiry.",
		}),
		EventsFannedOut: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_events_fanned_out_total",
			Help: "Outbound events delivered to room members.",
		}, []string{"event"}),
	}
}
