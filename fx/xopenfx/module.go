// Package xopenfx provides an fx module for a shared xopen opener.
package xopenfx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/DriesSchaumont/xopen"
	"github.com/DriesSchaumont/xopen/internal/stats"
	"github.com/DriesSchaumont/xopen/internal/stats/logger"
)

// Config holds configuration for the shared opener.
type Config struct {
	// Threads is the thread count handed to external programs.
	// Zero or below selects automatic scaling.
	Threads int

	// Level is the compression level used when writing.
	// Zero or below selects each format's default.
	Level int

	// InProcess disables external programs entirely.
	InProcess bool
}

// Module provides a shared *xopen.Opener.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("xopen",
	fx.Provide(
		newStatsCollector,
		newOpener,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("xopen.stats"))
}

// Params holds dependencies for creating the opener.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided opener.
type Result struct {
	fx.Out

	Opener *xopen.Opener
}

func newOpener(p Params) Result {
	threads := p.Config.Threads
	if threads <= 0 {
		threads = xopen.ThreadsAuto
	}
	if p.Config.InProcess {
		threads = 0
	}

	level := p.Config.Level
	if level <= 0 {
		level = xopen.DefaultLevel
	}

	opener := xopen.NewOpener(
		xopen.WithThreads(threads),
		xopen.WithLevel(level),
		xopen.WithStats(p.Collector),
		xopen.WithLogger(p.Logger.Named("xopen")),
	)

	return Result{Opener: opener}
}
