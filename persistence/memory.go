package persistence

import (
	"sync"
	"time"

	"github.com/chorgame/server/models"
)

// Memory is the default Store: process-lifetime maps, no durability, which
// matches the reference system's storage model.
type Memory struct {
	mutex     sync.RWMutex
	snapshots map[string]*models.RoomSnapshot
	records   map[string][]models.RoundRecord
}

func NewMemory() *Memory {
	return &Memory{
		snapshots: make(map[string]*models.RoomSnapshot),
		records:   make(map[string][]models.RoundRecord),
	}
}

func (m *Memory) SaveRoomSnapshot(snap *models.RoomSnapshot) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	copied := *snap
	copied.UpdatedAt = time.Now()
	m.snapshots[snap.RoomID] = &copied
	return nil
}

func (m *Memory) LoadRoomSnapshot(roomID string) (*models.RoomSnapshot, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap, exists := m.snapshots[roomID]
	if !exists {
		return nil, ErrRecordNotFound
	}
	copied := *snap
	return &copied, nil
}

func (m *Memory) SaveRoundRecord(rec *models.RoundRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.records[rec.RoomID] = append(m.records[rec.RoomID], *rec)
	return nil
}

// RoundHistory returns the most recent records first, at most limit of them
// (limit <= 0 means all).
func (m *Memory) RoundHistory(roomID string, limit int) ([]models.RoundRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	all := m.records[roomID]
	out := make([]models.RoundRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
