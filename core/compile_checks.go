package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Registry      = (*ProviderChain)(nil)
	_ AuditStore    = (*MemoryAuditStore)(nil)
	_ AuditRecorder = (*MemoryAuditStore)(nil)

	_ MetricsRecorder = NopMetricsRecorder{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
