package storage

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"ball-tracker/internal/domain/entity"
	"ball-tracker/internal/domain/port"
)

// SQLiteSessionRepository хранит завершённые сессии в SQLite
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSQLiteSessionRepository открывает базу по пути (поддерживает "~")
// и создаёт схему, если её ещё нет
func NewSQLiteSessionRepository(path string) (*SQLiteSessionRepository, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "expand db path")
	}

	if dir := filepath.Dir(expanded); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "create db directory")
		}
	}

	db, err := sql.Open("sqlite3", expanded)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	// WAL ради конкурентного доступа из сервера статистики.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("Warning: Failed to enable WAL mode: %v", err)
	}

	createTableSQL := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY,
        client_name TEXT NOT NULL DEFAULT '',
        started_at DATETIME NOT NULL,
        finished_at DATETIME NOT NULL,
        samples INTEGER NOT NULL,
        last_error REAL NOT NULL,
        mean_error REAL NOT NULL,
        max_error REAL NOT NULL,
        rms_error REAL NOT NULL
    );`

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create sessions table")
	}

	return &SQLiteSessionRepository{db: db}, nil
}

// Save сохраняет сессию, повторное сохранение перезаписывает запись
func (r *SQLiteSessionRepository) Save(ctx context.Context, session *entity.TrackingSession) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO sessions
            (id, client_name, started_at, finished_at, samples, last_error, mean_error, max_error, rms_error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.ClientName,
		session.StartedAt,
		session.FinishedAt,
		session.Samples,
		session.LastError,
		session.MeanError,
		session.MaxError,
		session.RMSError,
	)
	if err != nil {
		return errors.Wrap(err, "insert session")
	}

	return nil
}

// List возвращает последние сессии, свежие первыми
func (r *SQLiteSessionRepository) List(ctx context.Context, limit int) ([]*entity.TrackingSession, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, client_name, started_at, finished_at, samples, last_error, mean_error, max_error, rms_error
        FROM sessions
        ORDER BY finished_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query sessions")
	}
	defer rows.Close()

	var sessions []*entity.TrackingSession
	for rows.Next() {
		var s entity.TrackingSession
		if err := rows.Scan(
			&s.ID,
			&s.ClientName,
			&s.StartedAt,
			&s.FinishedAt,
			&s.Samples,
			&s.LastError,
			&s.MeanError,
			&s.MaxError,
			&s.RMSError,
		); err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate sessions")
	}

	return sessions, nil
}

// Close закрывает базу
func (r *SQLiteSessionRepository) Close() error {
	return r.db.Close()
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*SQLiteSessionRepository)(nil)
