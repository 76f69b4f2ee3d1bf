// Package exporters publishes the pipeline metrics over Prometheus scrape and
// the SSE event bus.
package exporters

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smazurov/histonode/internal/logging"
)

// scrapeLog adapts slog to promhttp's Println logger.
type scrapeLog struct{ logger *slog.Logger }

func (l scrapeLog) Println(v ...any) {
	l.logger.Warn("metrics scrape error", "detail", v)
}

// HTTPHandler serves the default registry, which holds every promauto metric
// in internal/metrics. Collection errors are logged and the remaining
// metrics are still served.
func HTTPHandler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog:          scrapeLog{logger: logging.GetLogger("metrics")},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})
}
