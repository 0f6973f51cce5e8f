// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/chorgame/server/models"
)

// Store is the durable backing for room state. Implementations preserve the
// snapshot/record shapes keyed by room id so a durable backend can replace
// the in-memory one without touching the registry.
type Store interface {
	SaveRoomSnapshot(snap *models.RoomSnapshot) error
	LoadRoomSnapshot(roomID string) (*models.RoomSnapshot, error)
	SaveRoundRecord(rec *models.RoundRecord) error
	RoundHistory(roomID string, limit int) ([]models.RoundRecord, error)
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
