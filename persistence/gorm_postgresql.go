// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chorgame/server/models"
)

// GormPostgreSQL is the GORM Store backend.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormRoomSnapshot{}, &models.GormRoundRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func (g *GormPostgreSQL) SaveRoomSnapshot(snap *models.RoomSnapshot) error {
	var row models.GormRoomSnapshot
	result := g.db.Where("room_id = ?", snap.RoomID).First(&row)

	if result.Error == gorm.ErrRecordNotFound {
		row = models.GormRoomSnapshot{
			RoomID:      snap.RoomID,
			Name:        snap.Name,
			Phase:       snap.Phase,
			Seated:      mustJSON(snap.Seated),
			Waitlist:    mustJSON(snap.Waitlist),
			Scores:      mustJSON(snap.Scores),
			RoundNumber: snap.RoundNumber,
		}
		return g.db.Create(&row).Error
	} else if result.Error != nil {
		return result.Error
	}

	row.Phase = snap.Phase
	row.Seated = mustJSON(snap.Seated)
	row.Waitlist = mustJSON(snap.Waitlist)
	row.Scores = mustJSON(snap.Scores)
	row.RoundNumber = snap.RoundNumber
	return g.db.Save(&row).Error
}

func (g *GormPostgreSQL) LoadRoomSnapshot(roomID string) (*models.RoomSnapshot, error) {
	var row models.GormRoomSnapshot
	if err := g.db.Where("room_id = ?", roomID).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	snap := &models.RoomSnapshot{
		RoomID:      row.RoomID,
		Name:        row.Name,
		Phase:       row.Phase,
		RoundNumber: row.RoundNumber,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Seated), &snap.Seated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(row.Waitlist), &snap.Waitlist); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(row.Scores), &snap.Scores); err != nil {
		return nil, err
	}
	return snap, nil
}

func (g *GormPostgreSQL) SaveRoundRecord(rec *models.RoundRecord) error {
	row := models.GormRoundRecord{
		RoomID:       rec.RoomID,
		RoundNumber:  rec.RoundNumber,
		Roles:        mustJSON(rec.Roles),
		PointsBefore: mustJSON(rec.PointsBefore),
		PointsAfter:  mustJSON(rec.PointsAfter),
		GuesserID:    rec.GuesserID,
		AccusedID:    rec.AccusedID,
		Correct:      rec.Correct,
	}
	return g.db.Create(&row).Error
}

func (g *GormPostgreSQL) RoundHistory(roomID string, limit int) ([]models.RoundRecord, error) {
	query := g.db.Where("room_id = ?", roomID).Order("round_number DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.GormRoundRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.RoundRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.RoundRecord{
			RoomID:      row.RoomID,
			RoundNumber: row.RoundNumber,
			GuesserID:   row.GuesserID,
			AccusedID:   row.AccusedID,
			Correct:     row.Correct,
			ResolvedAt:  row.CreatedAt,
		}
		if err := json.Unmarshal([]byte(row.Roles), &rec.Roles); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(row.PointsBefore), &rec.PointsBefore); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(row.PointsAfter), &rec.PointsAfter); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
