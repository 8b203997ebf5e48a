package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/event"
	"github.com/monikerhq/moniker/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth flow

	LoginLinksRequestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "login_links_requested_total",
		Help:      "Total magic login links issued.",
	})

	LoginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "logins_total",
		Help:      "Total successful token consumptions.",
	})

	TokenRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "token_rejections_total",
		Help:      "Total login attempts with an unknown or expired token.",
	})

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "registrations_total",
		Help:      "Total accounts created.",
	})

	ActivationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "activations_total",
		Help:      "Total accounts activated.",
	})

	ProfileViewsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "profile_views_total",
		Help:      "Total profile page views.",
	})

	// Janitor

	JanitorPurgedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "janitor_purged_total",
		Help:      "Rows purged by the janitor, by kind.",
	}, []string{"kind"})

	// HTTP

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moniker",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moniker",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		LoginLinksRequestedTotal,
		LoginsTotal,
		TokenRejectionsTotal,
		RegistrationsTotal,
		ActivationsTotal,
		ProfileViewsTotal,
		JanitorPurgedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// ObserveEvents counts domain events as they are published.
func ObserveEvents(bus *event.Bus) {
	count := func(c prometheus.Counter) event.Handler {
		return func(_ context.Context, _ domain.Event) error {
			c.Inc()
			return nil
		}
	}
	bus.Subscribe(domain.AuthenticationLinkWasRequested{}.EventName(), count(LoginLinksRequestedTotal))
	bus.Subscribe(domain.UserLoggedIn{}.EventName(), count(LoginsTotal))
	bus.Subscribe(domain.UserRegistered{}.EventName(), count(RegistrationsTotal))
	bus.Subscribe(domain.AccountWasActivated{}.EventName(), count(ActivationsTotal))
	bus.Subscribe(domain.UserProfileWasViewed{}.EventName(), count(ProfileViewsTotal))
}

// NewServer serves /metrics plus the liveness and readiness probes on
// the ops port.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
