package allocator

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	internal_errors "github.com/oboe-board/oboe/shared/errors"
)

var (
	allocationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oboe_post_ids_allocated_total",
			Help: "Total number of post ids issued",
		},
	)

	staleRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oboe_post_id_stale_retries_total",
			Help: "Number of times a counter write found the stored value changed and reloaded",
		},
	)

	allocationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oboe_post_id_errors_total",
			Help: "Allocator failures by operation and kind",
		},
		[]string{"op", "kind"},
	)
)

func observeError(op string, err error) {
	kind := "io"
	if errors.Is(err, internal_errors.ErrCorruptCounterState) {
		kind = "corrupt"
	}
	allocationErrorsTotal.WithLabelValues(op, kind).Inc()
}
