package oauth2client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Token lookup outcomes recorded in reqauth_oauth2_token_requests_total.
const (
	resultHit     = "hit"
	resultFetched = "fetched"
	resultFailed  = "failed"
)

type metrics struct {
	requests *prometheus.CounterVec
}

// newMetrics registers the counter with reg. A counter already registered by
// another TokenCache on the same registry is shared. A nil reg disables metrics.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reqauth",
		Subsystem: "oauth2",
		Name:      "token_requests_total",
		Help:      "OAuth2 token lookups by grant type and result (hit, fetched, failed).",
	}, []string{"grant_type", "result"})

	if err := reg.Register(requests); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		requests = existing
	}

	return &metrics{requests: requests}, nil
}

func (m *metrics) observe(grantType GrantType, result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(grantType), result).Inc()
}
