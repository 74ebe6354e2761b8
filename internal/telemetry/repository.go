package telemetry

import (
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/logger"
	"github.com/twentefluids/dodecalog/internal/sample"
)

type Repository interface {
	Store(s sample.Sample) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(errors.ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing sample archive at: %s", cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(errors.ErrStorageInit, err)
	}

	return &sqliteRepository{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            recorded_at INTEGER NOT NULL,
            time REAL NOT NULL,
            ds_temp REAL,
            bme_temp REAL,
            bme_humi REAL,
            bme_pres REAL,
            setpoint REAL,
            bath_temp REAL
        );
        CREATE INDEX IF NOT EXISTS idx_samples_recorded_at ON samples(recorded_at)
    `)
	return err
}

func (r *sqliteRepository) Store(s sample.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	_, err := r.db.Exec(`
        INSERT INTO samples (
            recorded_at, time, ds_temp, bme_temp, bme_humi, bme_pres, setpoint, bath_temp
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		time.Now().Unix(),
		s.Time,
		nullable(s.DSTemp),
		nullable(s.BMETemp),
		nullable(s.BMEHumi),
		nullable(s.BMEPres),
		nullable(s.Setpoint),
		nullable(s.BathTemp),
	)
	if err != nil {
		return errFactory.Wrap(errors.ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(errors.ErrStorageClose, err)
	}
	return nil
}

// nullable maps a missing reading (NaN) to NULL.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
