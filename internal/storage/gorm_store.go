package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
)

type vetoState struct {
	Key       string `gorm:"primaryKey"`
	Payload   string `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (vetoState) TableName() string { return "veto_states" }

// GormStore persists veto records in postgres, one row per session key.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects through gorm's pgx-backed postgres driver and
// migrates the veto_states table.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&vetoState{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("postgres store ready")
	return &GormStore{db: db}, nil
}

func (s *GormStore) Save(ctx context.Context, key string, rec *engine.VetoRecord) error {
	payload := "{}"
	if rec != nil {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		payload = string(b)
	}

	row := vetoState{Key: key, Payload: payload, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *GormStore) Load(ctx context.Context, key string) (*engine.VetoRecord, error) {
	var row vetoState
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return decodeRecord([]byte(row.Payload))
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
