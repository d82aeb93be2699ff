package media

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	Create(ctx context.Context, f *File) error
	Get(ctx context.Context, id string) (*File, error)
	GetByHash(ctx context.Context, hash string) (*File, error)
	List(ctx context.Context) ([]*File, error)
	Delete(ctx context.Context, id string) error
	UpdatePresent(ctx context.Context, id string, present bool) error
	Count(ctx context.Context) (int, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const fileColumns = `id, path, filename, kind, duration, width, height, video_codec, audio_codec, size, hash, present, imported_at`

func (r *SQLiteRepository) Create(ctx context.Context, f *File) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media_files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Path, f.Filename, f.Kind, f.Duration, f.Width, f.Height,
		nullString(f.VideoCodec), nullString(f.AudioCodec), f.Size, f.Hash,
		boolToInt(f.Present), f.ImportedAt.Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*File, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+` FROM media_files WHERE id = ?
	`, id)
	return scanFile(row)
}

func (r *SQLiteRepository) GetByHash(ctx context.Context, hash string) (*File, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+` FROM media_files WHERE hash = ? LIMIT 1
	`, hash)
	return scanFile(row)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*File, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+fileColumns+` FROM media_files ORDER BY imported_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM media_files WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdatePresent(ctx context.Context, id string, present bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE media_files SET present = ? WHERE id = ?", boolToInt(present), id)
	return err
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media_files").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row *sql.Row) (*File, error) {
	f, err := scanFileRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func scanFileRow(row rowScanner) (*File, error) {
	var f File
	var videoCodec, audioCodec sql.NullString
	var present int
	var importedAt string

	err := row.Scan(&f.ID, &f.Path, &f.Filename, &f.Kind, &f.Duration, &f.Width, &f.Height,
		&videoCodec, &audioCodec, &f.Size, &f.Hash, &present, &importedAt)
	if err != nil {
		return nil, err
	}

	f.VideoCodec = videoCodec.String
	f.AudioCodec = audioCodec.String
	f.Present = present == 1
	f.ImportedAt, _ = time.Parse(time.RFC3339Nano, importedAt)
	return &f, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
