package location

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// Directory is an in-memory snapshot of all locations. It reports permission.ErrDirectoryNotReady
// until the first successful load.
type Directory struct {
	repo   Repository
	logger logger.ZapLogger

	mu        sync.RWMutex
	locations map[int64]model.Location
	ready     bool
}

func NewDirectory(repo Repository, log logger.ZapLogger) *Directory {
	return &Directory{
		repo:      repo,
		logger:    log,
		locations: map[int64]model.Location{},
	}
}

func (d *Directory) Load(ctx context.Context) error {
	locations, err := d.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	d.Replace(locations)
	return nil
}

// Replace swaps the snapshot and marks the directory ready.
func (d *Directory) Replace(locations []model.Location) {
	next := make(map[int64]model.Location, len(locations))
	for _, l := range locations {
		next[l.ID] = l
	}

	d.mu.Lock()
	d.locations = next
	d.ready = true
	d.mu.Unlock()
}

// Run reloads the snapshot every interval until ctx is done. A failed reload keeps the previous snapshot.
func (d *Directory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Load(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				d.logger.Error("failed to refresh location directory", zap.Error(err))
			}
		}
	}
}

func (d *Directory) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ready
}

func (d *Directory) Get(id int64) (model.Location, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.ready {
		return model.Location{}, false, permission.ErrDirectoryNotReady
	}
	l, ok := d.locations[id]
	return l, ok, nil
}

// List returns the locations ordered by ID.
func (d *Directory) List() ([]model.Location, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.ready {
		return nil, permission.ErrDirectoryNotReady
	}
	out := make([]model.Location, 0, len(d.locations))
	for _, l := range d.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *Directory) IsWarehouse(id int64) (bool, error) {
	return d.isType(id, model.LocationWarehouse)
}

func (d *Directory) IsShowroom(id int64) (bool, error) {
	return d.isType(id, model.LocationShowroom)
}

func (d *Directory) isType(id int64, t model.LocationType) (bool, error) {
	l, ok, err := d.Get(id)
	if err != nil || !ok {
		return false, err
	}
	return l.Type == t, nil
}

// Name is a display helper; unknown locations render as their ID.
func (d *Directory) Name(id int64) string {
	l, ok, err := d.Get(id)
	if err != nil || !ok {
		return fmt.Sprintf("#%d", id)
	}
	return l.Name
}
