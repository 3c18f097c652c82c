// Package metrics holds the prometheus counters hpost updates while it
// decodes files and derives fields. hpost is not a daemon, so instead of
// serving them the counters are written out in the text exposition format
// for node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hpost"

const (
	storeSubsystem  = "store"
	deriveSubsystem = "derive"
)

// Registry is the registry every hpost collector is registered with.
var Registry = prometheus.NewRegistry()

var (
	FilesDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: storeSubsystem,
		Name:      "files_decoded_total",
		Help:      "Number of solution files decoded",
	})

	BytesDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: storeSubsystem,
		Name:      "bytes_decoded_total",
		Help:      "Number of uncompressed bytes passed to the decoder",
	})

	DecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: storeSubsystem,
		Name:      "decode_errors_total",
		Help:      "Number of files which could not be read or decoded",
	})

	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: storeSubsystem,
		Name:      "cache_hits_total",
		Help:      "Number of loads served from the decoded-file cache",
	})

	FieldsDerived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: deriveSubsystem,
		Name:      "fields_total",
		Help:      "Number of derived channels appended, by field",
	}, []string{"field"})
)

func init() {
	Registry.MustRegister(
		FilesDecoded,
		BytesDecoded,
		DecodeErrors,
		CacheHits,
		FieldsDerived,
	)
}

// WriteFile writes the current value of every counter to path. The file
// is replaced atomically.
func WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("The metrics file %s could not be written: %w",
			path, err)
	}
	return nil
}
