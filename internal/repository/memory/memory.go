// Package memory implements the repository interfaces in process memory.
// It backs the hub when no database is configured and doubles as the store
// for service-level tests. Transactions are accepted but not isolated.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type tx struct{}

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }
func (tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

// Store holds every table; the typed repositories below are views on it.
type Store struct {
	mu       sync.RWMutex
	crops    map[string]models.CropProfile
	devices  map[string]models.Device
	readings []models.SensorReading
	alerts   []models.Alert
	active   string
}

func NewStore() *Store {
	return &Store{
		crops:   map[string]models.CropProfile{},
		devices: map[string]models.Device{},
	}
}

func (s *Store) Crops() *CropRepo       { return &CropRepo{s} }
func (s *Store) Devices() *DeviceRepo   { return &DeviceRepo{s} }
func (s *Store) Readings() *ReadingRepo { return &ReadingRepo{s} }
func (s *Store) Alerts() *AlertRepo     { return &AlertRepo{s} }
func (s *Store) Active() *ActiveStore   { return &ActiveStore{s} }

type CropRepo struct{ s *Store }

func (r *CropRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return tx{}, nil
}

func (r *CropRepo) Create(ctx context.Context, crop *models.CropProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if crop.ID == "" {
		crop.ID = nuts.NID("crop", 12)
	}
	if crop.CreatedAt.IsZero() {
		crop.CreatedAt = time.Now().UTC()
	}
	r.s.crops[crop.ID] = *crop
	return nil
}

func (r *CropRepo) Get(ctx context.Context, id string) (*models.CropProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	crop, ok := r.s.crops[id]
	if !ok {
		return nil, errors.NewNotFoundError("crop not found", nil)
	}
	return &crop, nil
}

func (r *CropRepo) First(ctx context.Context) (*models.CropProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var first *models.CropProfile
	for _, c := range r.s.crops {
		c := c
		if first == nil || c.CreatedAt.Before(first.CreatedAt) ||
			(c.CreatedAt.Equal(first.CreatedAt) && c.ID < first.ID) {
			first = &c
		}
	}
	if first == nil {
		return nil, errors.NewNotFoundError("no crop profiles configured", nil)
	}
	return first, nil
}

func (r *CropRepo) Update(ctx context.Context, crop *models.CropProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.crops[crop.ID]
	if !ok {
		return errors.NewNotFoundError("crop not found", nil)
	}
	crop.CreatedAt = existing.CreatedAt
	r.s.crops[crop.ID] = *crop
	return nil
}

func (r *CropRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.crops[id]; !ok {
		return errors.NewNotFoundError("crop not found", nil)
	}
	delete(r.s.crops, id)
	for i := range r.s.readings {
		if cid := r.s.readings[i].CropID; cid != nil && *cid == id {
			r.s.readings[i].CropID = nil
		}
	}
	return nil
}

func (r *CropRepo) DeleteTx(ctx context.Context, _ database.Transaction, id string) error {
	return r.Delete(ctx, id)
}

func (r *CropRepo) List(ctx context.Context) ([]*models.CropProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	crops := make([]*models.CropProfile, 0, len(r.s.crops))
	for _, c := range r.s.crops {
		c := c
		crops = append(crops, &c)
	}
	sort.Slice(crops, func(i, j int) bool { return crops[i].Name < crops[j].Name })
	return crops, nil
}

func (r *CropRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.crops)), nil
}

type DeviceRepo struct{ s *Store }

func (r *DeviceRepo) Create(ctx context.Context, device *models.Device) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if device.ID == "" {
		device.ID = nuts.NID("dev", 12)
	}
	if device.LastUpdated.IsZero() {
		device.LastUpdated = time.Now().UTC()
	}
	r.s.devices[device.ID] = *device
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.devices[id]
	if !ok {
		return nil, errors.NewNotFoundError("device not found", nil)
	}
	return &d, nil
}

func (r *DeviceRepo) List(ctx context.Context) ([]*models.Device, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	devices := make([]*models.Device, 0, len(r.s.devices))
	for _, d := range r.s.devices {
		d := d
		devices = append(devices, &d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

func (r *DeviceRepo) SetState(ctx context.Context, id string, on bool) (*models.Device, error) {
	return r.update(id, func(d *models.Device) { d.IsOn = on })
}

func (r *DeviceRepo) Toggle(ctx context.Context, id string) (*models.Device, error) {
	return r.update(id, func(d *models.Device) { d.IsOn = !d.IsOn })
}

func (r *DeviceRepo) update(id string, fn func(*models.Device)) (*models.Device, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.devices[id]
	if !ok {
		return nil, errors.NewNotFoundError("device not found", nil)
	}
	fn(&d)
	d.LastUpdated = time.Now().UTC()
	r.s.devices[id] = d
	return &d, nil
}

func (r *DeviceRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.devices)), nil
}

type ReadingRepo struct{ s *Store }

func (r *ReadingRepo) Insert(ctx context.Context, reading *models.SensorReading) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if reading.ID == "" {
		reading.ID = nuts.NID("rd", 12)
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now().UTC()
	}
	r.s.readings = append(r.s.readings, *reading)
	return nil
}

// newestFirst returns copies ordered by created_at desc, insertion order breaking ties.
func (r *ReadingRepo) newestFirst() []models.SensorReading {
	out := make([]models.SensorReading, len(r.s.readings))
	for i, rd := range r.s.readings {
		out[len(out)-1-i] = rd
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.SensorReading, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if len(r.s.readings) == 0 {
		return nil, errors.NewNotFoundError("no readings recorded yet", nil)
	}
	latest := r.newestFirst()[0]
	return &latest, nil
}

func (r *ReadingRepo) History(ctx context.Context, filters models.ReadingFilters) ([]*models.SensorReading, error) {
	filters.Normalize()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*models.SensorReading{}
	for _, rd := range r.newestFirst() {
		rd := rd
		if !filters.Since.IsZero() && rd.CreatedAt.Before(filters.Since) {
			continue
		}
		if filters.CropID != "" && (rd.CropID == nil || *rd.CropID != filters.CropID) {
			continue
		}
		out = append(out, &rd)
		if len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

func (r *ReadingRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.readings[:0]
	var deleted int64
	for _, rd := range r.s.readings {
		if rd.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, rd)
	}
	r.s.readings = kept
	return deleted, nil
}

func (r *ReadingRepo) ClearCrop(ctx context.Context, _ database.Transaction, cropID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.readings {
		if cid := r.s.readings[i].CropID; cid != nil && *cid == cropID {
			r.s.readings[i].CropID = nil
		}
	}
	return nil
}

// Count is a test helper.
func (r *ReadingRepo) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.readings)
}

type AlertRepo struct{ s *Store }

func (r *AlertRepo) CreateBatch(ctx context.Context, alerts []models.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	for i := range alerts {
		if alerts[i].ID == "" {
			alerts[i].ID = nuts.NID("alert", 12)
		}
		if alerts[i].CreatedAt.IsZero() {
			alerts[i].CreatedAt = now
		}
		r.s.alerts = append(r.s.alerts, alerts[i])
	}
	return nil
}

func (r *AlertRepo) List(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error) {
	filters.Normalize()
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []*models.Alert{}
	for i := len(r.s.alerts) - 1; i >= 0; i-- {
		a := r.s.alerts[i]
		if filters.Unread && a.IsRead {
			continue
		}
		if filters.SensorType != "" && a.SensorType != filters.SensorType {
			continue
		}
		matched = append(matched, &a)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if filters.Offset >= len(matched) {
		return []*models.Alert{}, nil
	}
	matched = matched[filters.Offset:]
	if len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, nil
}

func (r *AlertRepo) MarkRead(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.alerts {
		if r.s.alerts[i].ID == id {
			r.s.alerts[i].IsRead = true
			return nil
		}
	}
	return errors.NewNotFoundError("alert not found", nil)
}

func (r *AlertRepo) MarkAllRead(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i := range r.s.alerts {
		if !r.s.alerts[i].IsRead {
			r.s.alerts[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *AlertRepo) UnreadSensorTypes(ctx context.Context) (map[models.Metric]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	unread := map[models.Metric]bool{}
	for _, a := range r.s.alerts {
		if !a.IsRead {
			unread[a.SensorType] = true
		}
	}
	return unread, nil
}

type ActiveStore struct{ s *Store }

func (a *ActiveStore) Get(ctx context.Context) (string, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return a.s.active, nil
}

func (a *ActiveStore) Set(ctx context.Context, cropID string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.active = cropID
	return nil
}

func (a *ActiveStore) ClearIf(ctx context.Context, cropID string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if a.s.active == cropID {
		a.s.active = ""
	}
	return nil
}
