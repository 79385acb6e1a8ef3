package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// CommandPublisher forwards an applied command to the physical actuator.
type CommandPublisher interface {
	PublishCommand(ctx context.Context, cmd models.DeviceCommand) error
}

// DeviceWriter is the single writer of auto-control device state. Commands
// from concurrent ingestions are applied one at a time in arrival order, so
// the last submitted command for a device wins. Failures are logged and dropped.
type DeviceWriter struct {
	devices   repository.DeviceRepository
	publisher CommandPublisher
	metrics   Metrics
	timeout   time.Duration

	queue  chan models.DeviceCommand
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

type DeviceWriterOption func(*DeviceWriter)

func WithPublisher(p CommandPublisher) DeviceWriterOption {
	return func(w *DeviceWriter) { w.publisher = p }
}

func WithWriterMetrics(m Metrics) DeviceWriterOption {
	return func(w *DeviceWriter) { w.metrics = m }
}

// NewDeviceWriter starts the writer goroutine.
func NewDeviceWriter(devices repository.DeviceRepository, queueSize int, timeout time.Duration, opts ...DeviceWriterOption) *DeviceWriter {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	w := &DeviceWriter{
		devices: devices,
		metrics: nopMetrics{},
		timeout: timeout,
		queue:   make(chan models.DeviceCommand, queueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Submit enqueues cmd without blocking. It reports false when the queue is
// full or the writer is stopped.
func (w *DeviceWriter) Submit(cmd models.DeviceCommand) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- cmd:
		w.metrics.SetDeviceQueueDepth(len(w.queue))
		return true
	default:
		nuts.L.Errorf("[DeviceWriter] Queue full, dropping command for %s (on=%v)", cmd.DeviceID, cmd.DesiredOn)
		w.metrics.DeviceCommand(string(cmd.DeviceType), "dropped")
		return false
	}
}

// Stop rejects new commands, drains the queue and waits for the writer to exit.
func (w *DeviceWriter) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *DeviceWriter) run() {
	defer close(w.done)
	for cmd := range w.queue {
		w.metrics.SetDeviceQueueDepth(len(w.queue))
		w.apply(cmd)
	}
}

func (w *DeviceWriter) apply(cmd models.DeviceCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if _, err := w.devices.SetState(ctx, cmd.DeviceID, cmd.DesiredOn); err != nil {
		nuts.L.Errorf("[DeviceWriter] Failed to set %s on=%v: %v", cmd.DeviceID, cmd.DesiredOn, err)
		w.metrics.DeviceCommand(string(cmd.DeviceType), "failed")
		w.metrics.SideEffectFailed("device")
		return
	}
	w.metrics.DeviceCommand(string(cmd.DeviceType), "applied")
	nuts.L.Infof("[DeviceWriter] %s (%s) switched on=%v", cmd.DeviceID, cmd.DeviceType, cmd.DesiredOn)

	if w.publisher == nil {
		return
	}
	if err := w.publisher.PublishCommand(ctx, cmd); err != nil {
		nuts.L.Errorf("[DeviceWriter] Failed to publish command for %s: %v", cmd.DeviceID, err)
		w.metrics.SideEffectFailed("publish")
	}
}
