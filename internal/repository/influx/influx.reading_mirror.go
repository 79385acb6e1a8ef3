package influx

import (
	"sync"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	nuts "github.com/vaudience/go-nuts"
)

const measurement = "sensor_reading"

// ReadingMirror copies persisted readings into InfluxDB for long-range charts.
// Writes are batched by the non-blocking WriteAPI; failures surface on its
// error channel and are only logged.
type ReadingMirror struct {
	api api.WriteAPI

	mu      sync.RWMutex
	lastErr time.Time
	written int64
}

func NewReadingMirror(client influxdb2.Client, org, bucket string) *ReadingMirror {
	return newReadingMirror(client.WriteAPI(org, bucket))
}

func newReadingMirror(w api.WriteAPI) *ReadingMirror {
	m := &ReadingMirror{api: w}
	go func() {
		for err := range w.Errors() {
			if err == nil {
				continue
			}
			m.mu.Lock()
			m.lastErr = time.Now()
			m.mu.Unlock()
			nuts.L.Errorf("[InfluxMirror] Write failed: %v", err)
		}
	}()
	return m
}

// Point renders a reading as one point: metrics and severities as fields,
// the crop as a tag.
func Point(reading *models.SensorReading) *write.Point {
	tags := map[string]string{}
	if reading.CropID != nil {
		tags["crop_id"] = *reading.CropID
	}
	fields := map[string]interface{}{}
	for _, metric := range models.AllMetrics {
		fields[string(metric)] = reading.Get(metric)
		fields[string(metric)+"_status"] = string(reading.Status.Get(metric))
	}
	return influxdb2.NewPoint(measurement, tags, fields, reading.CreatedAt)
}

func (m *ReadingMirror) WriteReading(reading *models.SensorReading) {
	m.api.WritePoint(Point(reading))
	m.mu.Lock()
	m.written++
	m.mu.Unlock()
}

// LastErrorAge reports how long ago the last write failed; zero if never.
func (m *ReadingMirror) LastErrorAge() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastErr.IsZero() {
		return 0
	}
	return time.Since(m.lastErr)
}

// Written counts the points handed to the write API since start.
func (m *ReadingMirror) Written() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.written
}

// Flush forces pending points out, used on shutdown.
func (m *ReadingMirror) Flush() {
	m.api.Flush()
}
