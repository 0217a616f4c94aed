package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	niche      TEXT NOT NULL,
	keywords   TEXT NOT NULL DEFAULT '',
	file_path  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos (created_at);
`

// Video is one produced short. VideoID is the platform id, or
// "local_only" when the upload was skipped or failed.
type Video struct {
	ID        int64     `db:"id" json:"id"`
	VideoID   string    `db:"video_id" json:"videoId"`
	Title     string    `db:"title" json:"title"`
	Niche     string    `db:"niche" json:"niche"`
	Keywords  string    `db:"keywords" json:"keywords"`
	FilePath  string    `db:"file_path" json:"filePath"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Store keeps the durable record of produced videos behind the
// dashboard stats. Live jobs are never persisted here.
type Store struct {
	db *sqlx.DB
}

// Open connects to the sqlite database at path and initializes the
// schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one produced video.
func (s *Store) Record(v Video) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExec(
		`INSERT INTO videos (video_id, title, niche, keywords, file_path, created_at)
		 VALUES (:video_id, :title, :niche, :keywords, :file_path, :created_at)`, v)
	if err != nil {
		return fmt.Errorf("record video: %w", err)
	}
	return nil
}

// Total returns the count of all recorded videos.
func (s *Store) Total() (int, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM videos`); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return n, nil
}

// CountSince returns the count of videos recorded at or after t.
func (s *Store) CountSince(t time.Time) (int, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM videos WHERE created_at >= ?`, t); err != nil {
		return 0, fmt.Errorf("count videos since: %w", err)
	}
	return n, nil
}

// Recent returns the newest n videos, newest first.
func (s *Store) Recent(n int) ([]Video, error) {
	videos := []Video{}
	err := s.db.Select(&videos, `SELECT * FROM videos ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("list recent videos: %w", err)
	}
	return videos, nil
}

// JoinKeywords flattens a keyword list for storage.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ",")
}
