package tiles

import "github.com/prometheus/client_golang/prometheus"

var (
	bakeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mapforge",
		Subsystem: "tiles",
		Name:      "bake_duration_seconds",
		Help:      "Time spent baking a grid into a merged mesh.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
	trianglesEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "tiles",
		Name:      "baked_triangles_total",
		Help:      "Triangles written into baked meshes.",
	})
	trianglesCulled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "tiles",
		Name:      "culled_triangles_total",
		Help:      "Triangles removed as hidden faces between neighboring tiles.",
	})
	batchRegenerations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "tiles",
		Name:      "batch_regenerations_total",
		Help:      "Number of times instance batches were rebuilt.",
	})
	codecBytesEncoded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "codec",
		Name:      "encoded_bytes_total",
		Help:      "Raw tile record bytes produced before base64.",
	})
	codecBytesDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "codec",
		Name:      "decoded_bytes_total",
		Help:      "Raw tile record bytes accepted after base64.",
	})
)

// RegisterMetrics registers the bake, batch and codec collectors on reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		bakeDuration,
		trianglesEmitted,
		trianglesCulled,
		batchRegenerations,
		codecBytesEncoded,
		codecBytesDecoded,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}
