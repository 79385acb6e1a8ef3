package ingest

import "time"

// Metrics is the subset of the monitoring service the pipeline reports to.
type Metrics interface {
	ObserveIngest(outcome string, d time.Duration)
	AlertCreated(severity string)
	DeviceCommand(deviceType, outcome string)
	SideEffectFailed(kind string)
	SetDeviceQueueDepth(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveIngest(string, time.Duration) {}
func (nopMetrics) AlertCreated(string)                 {}
func (nopMetrics) DeviceCommand(string, string)        {}
func (nopMetrics) SideEffectFailed(string)             {}
func (nopMetrics) SetDeviceQueueDepth(int)             {}
