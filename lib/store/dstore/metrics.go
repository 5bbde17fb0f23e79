package dstore

import "github.com/VictoriaMetrics/metrics"

var (
	metricSets        = metrics.NewCounter(`ttlstore_ops_total{engine="durable",op="set"}`)
	metricGets        = metrics.NewCounter(`ttlstore_ops_total{engine="durable",op="get"}`)
	metricGCSweeps    = metrics.NewCounter(`ttlstore_gc_sweeps_total{engine="durable"}`)
	metricGCReclaimed = metrics.NewCounter(`ttlstore_gc_reclaimed_total{engine="durable"}`)
)
