package fstore

import "github.com/VictoriaMetrics/metrics"

var (
	metricSets        = metrics.NewCounter(`ttlstore_ops_total{engine="fast",op="set"}`)
	metricGets        = metrics.NewCounter(`ttlstore_ops_total{engine="fast",op="get"}`)
	metricGCSweeps    = metrics.NewCounter(`ttlstore_gc_sweeps_total{engine="fast"}`)
	metricGCReclaimed = metrics.NewCounter(`ttlstore_gc_reclaimed_total{engine="fast"}`)
)
