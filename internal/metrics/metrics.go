package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	PartiesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parties_created_total",
		Help: "Parties created since process start",
	})
	PartiesDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parties_deleted_total",
		Help: "Parties deleted (confirmed or admin)",
	})
	Joins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "party_joins_total",
		Help: "Successful roster joins by role",
	}, []string{"role"})
	JoinRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "party_join_rejections_total",
		Help: "Rejected roster joins by reason",
	}, []string{"reason"})
)

func Register() {
	prometheus.MustRegister(PartiesCreated, PartiesDeleted, Joins, JoinRejections)
}

// Serve exposes /metrics and /healthz on addr in a background goroutine.
func Serve(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
}
