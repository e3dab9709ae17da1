package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"gallery/internal/config"
	"gallery/internal/models"
	"gallery/internal/storage"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const imageColumns = `id, owner_id, title, file_name, file_url, created_at, updated_at`

type Storage struct {
	DB *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	return Open(connStr)
}

// Open connects with a lib/pq connection string and applies pending migrations.
func Open(connStr string) (*Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{DB: db}, nil
}

func migrate(db *sql.DB) error {
	const op = "storage.postgres.migrate"

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.Up(db, "migrations"); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (*models.Image, error) {
	var image models.Image

	err := row.Scan(
		&image.ID,
		&image.OwnerID,
		&image.Title,
		&image.FileName,
		&image.FileURL,
		&image.CreatedAt,
		&image.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &image, nil
}

func (s *Storage) ListImages(ctx context.Context, ownerID string) ([]models.Image, error) {
	const op = "storage.postgres.ListImages"

	query := `
        SELECT ` + imageColumns + `
        FROM images
        WHERE owner_id = $1
        ORDER BY created_at, id`

	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	images := make([]models.Image, 0)

	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		images = append(images, *image)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

func (s *Storage) SaveImage(ctx context.Context, ownerID, title, fileName, fileURL string) (*models.Image, error) {
	const op = "storage.postgres.SaveImage"

	imageID := uuid.New()

	query := `
        INSERT INTO images (id, owner_id, title, file_name, file_url)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + imageColumns

	image, err := scanImage(s.DB.QueryRowContext(ctx, query, imageID, ownerID, title, fileName, fileURL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

func (s *Storage) GetImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error) {
	const op = "storage.postgres.GetImage"

	query := `
        SELECT ` + imageColumns + `
        FROM images
        WHERE id = $1 AND owner_id = $2`

	image, err := scanImage(s.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

func (s *Storage) UpdateImage(ctx context.Context, ownerID string, id uuid.UUID, patch models.ImagePatch) (*models.Image, error) {
	const op = "storage.postgres.UpdateImage"

	query := `
        UPDATE images
        SET title = COALESCE($3, title),
            file_name = COALESCE($4, file_name),
            file_url = COALESCE($5, file_url),
            updated_at = NOW()
        WHERE id = $1 AND owner_id = $2
        RETURNING ` + imageColumns

	image, err := scanImage(s.DB.QueryRowContext(ctx, query, id, ownerID,
		nullString(patch.Title),
		nullString(patch.FileName),
		nullString(patch.FileURL),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

// DeleteImage removes the record and returns it as it was before deletion.
func (s *Storage) DeleteImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error) {
	const op = "storage.postgres.DeleteImage"

	query := `
        DELETE FROM images
        WHERE id = $1 AND owner_id = $2
        RETURNING ` + imageColumns

	image, err := scanImage(s.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
