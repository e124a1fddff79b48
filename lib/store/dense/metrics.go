package dense

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/anydict/numstore/lib/store"
)

// Operation counters. These are process-global (shared between all dense
// stores in the process) and exposed by the serve command's Prometheus
// endpoint.
var (
	metricSet    = metrics.GetOrCreateCounter(`numstore_ops_total{op="set"}`)
	metricGet    = metrics.GetOrCreateCounter(`numstore_ops_total{op="get"}`)
	metricDelete = metrics.GetOrCreateCounter(`numstore_ops_total{op="delete"}`)
	metricPop    = metrics.GetOrCreateCounter(`numstore_ops_total{op="pop"}`)
	metricHas    = metrics.GetOrCreateCounter(`numstore_ops_total{op="has"}`)
	metricClear  = metrics.GetOrCreateCounter(`numstore_ops_total{op="clear"}`)
	metricSave   = metrics.GetOrCreateCounter(`numstore_ops_total{op="save"}`)
	metricLoad   = metrics.GetOrCreateCounter(`numstore_ops_total{op="load"}`)
)

// metricRejection returns the rejection counter for an error code. Counted
// in both modes - in lenient mode this is the only trace a violation leaves
// besides the log line.
func metricRejection(code store.ErrCode) *metrics.Counter {
	return metrics.GetOrCreateCounter(
		fmt.Sprintf(`numstore_rejections_total{code=%q}`, code.String()))
}
