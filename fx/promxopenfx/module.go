// Package promxopenfx provides an fx module for an xopen opener that
// reports metrics to Prometheus.
package promxopenfx

import (
	promclient "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/DriesSchaumont/xopen"
	"github.com/DriesSchaumont/xopen/internal/stats"
	statsprom "github.com/DriesSchaumont/xopen/internal/stats/prometheus"
)

// Module provides a *xopen.Opener wired to a Prometheus collector.
// Requires a *zap.Logger to be provided. A prometheus.Registerer may be
// provided; otherwise the default registerer is used.
var Module = fx.Module("promxopen",
	fx.Provide(
		newStatsCollector,
		newOpener,
	),
)

// CollectorParams holds dependencies for creating the collector.
type CollectorParams struct {
	fx.In

	Registry promclient.Registerer `optional:"true"`
}

func newStatsCollector(p CollectorParams) stats.Collector {
	return statsprom.New(p.Registry)
}

// Params holds dependencies for creating the opener.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided opener.
type Result struct {
	fx.Out

	Opener *xopen.Opener
}

func newOpener(p Params) Result {
	opener := xopen.NewOpener(
		xopen.WithStats(p.Collector),
		xopen.WithLogger(p.Logger.Named("xopen")),
	)
	return Result{Opener: opener}
}
