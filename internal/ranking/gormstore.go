package ranking

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotPostgres is returned by OpenPostgres for DSNs it cannot handle.
var ErrNotPostgres = errors.New("ranking: not a postgres dsn")

// row is the Postgres table layout. The composite index matches the Top
// query's ORDER BY.
type row struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Level     int       `gorm:"not null;index:ranking_level_moves,priority:1"`
	Moves     int       `gorm:"not null;index:ranking_level_moves,priority:2"`
	Name      string    `gorm:"not null;size:96"`
	CreatedAt time.Time `gorm:"not null"`
}

func (row) TableName() string { return "ranking" }

// GormStore keeps the ranking in Postgres through GORM.
type GormStore struct{ db *gorm.DB }

// IsPostgresDSN reports whether dsn looks like a Postgres URL.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// OpenPostgres connects to dsn and migrates the ranking table.
func OpenPostgres(dsn string) (*GormStore, error) {
	if !IsPostgresDSN(dsn) {
		return nil, ErrNotPostgres
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

// NewGormStore wraps an open GORM handle and migrates the ranking table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&row{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Submit(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, time.Now())
	if err != nil {
		return e, err
	}
	r := row{Level: e.Level, Moves: e.Moves, Name: e.Name, CreatedAt: e.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return e, err
	}
	e.ID = r.ID
	return e, nil
}

func (s *GormStore) Top(ctx context.Context, level, limit int) ([]Entry, error) {
	var rows []row
	err := s.db.WithContext(ctx).
		Where("level = ?", level).
		Order("moves ASC").
		Order("id ASC").
		Limit(limitOrDefault(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{ID: r.ID, Level: r.Level, Name: r.Name, Moves: r.Moves, CreatedAt: r.CreatedAt.UTC()})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
