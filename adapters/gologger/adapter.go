// Package gologger bridges the signing glog stack onto go-job's logging
// contracts so queue components and pass runners share one sink.
package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// Resolve keeps glog's deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// JobLogging bundles one resolved logging stack with its go-job bridges.
type JobLogging struct {
	Provider    glog.LoggerProvider
	Logger      glog.Logger
	JobProvider job.LoggerProvider
	JobLogger   job.Logger
}

// ResolveForJob resolves the glog stack once and derives the go-job
// equivalents from the same resolution, never from separate fallbacks.
func ResolveForJob(name string, provider glog.LoggerProvider, logger glog.Logger) JobLogging {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	out := JobLogging{
		Provider: resolvedProvider,
		Logger:   resolvedLogger,
	}
	if resolvedProvider != nil {
		out.JobProvider = job.GoLoggerProvider(resolvedProvider)
	}
	if resolvedLogger != nil {
		out.JobLogger = job.GoLogger(resolvedLogger)
	}
	return out
}
