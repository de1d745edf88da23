package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"landregistry/internal/registry/models"
)

// PostgresParcelStore persists parcels, their document trails, and the
// location uniqueness index in PostgreSQL. Registration writes the record,
// the index entry, and the first document in a single transaction so a failed
// registration leaves no partial state behind.
type PostgresParcelStore struct {
	db *sql.DB
}

func NewPostgresParcelStore(db *sql.DB) *PostgresParcelStore {
	return &PostgresParcelStore{db: db}
}

// Bootstrap creates the schema. Idempotent; intended for small deployments
// and integration tests rather than a migration pipeline.
func (s *PostgresParcelStore) Bootstrap(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS parcels (
			id               BIGINT PRIMARY KEY,
			location         TEXT NOT NULL,
			survey_reference TEXT NOT NULL,
			verified         BOOLEAN NOT NULL DEFAULT FALSE,
			registered_at    TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS parcel_documents (
			parcel_id    BIGINT NOT NULL REFERENCES parcels(id),
			seq          INT NOT NULL,
			document_ref TEXT NOT NULL,
			PRIMARY KEY (parcel_id, seq)
		);
		CREATE TABLE IF NOT EXISTS parcel_locations (
			location_hash TEXT PRIMARY KEY,
			parcel_id     BIGINT NOT NULL REFERENCES parcels(id)
		);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("bootstrap parcel schema: %w", err)
	}
	return nil
}

func (s *PostgresParcelStore) Save(ctx context.Context, parcel models.Parcel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save parcel: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO parcels (id, location, survey_reference, verified, registered_at)
		VALUES ($1, $2, $3, $4, $5)
	`, parcel.ID, parcel.Location, parcel.SurveyReference, parcel.Verified, parcel.RegisteredAt)
	if err != nil {
		return fmt.Errorf("insert parcel: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO parcel_locations (location_hash, parcel_id)
		VALUES ($1, $2)
	`, models.LocationHash(parcel.Location), parcel.ID)
	if err != nil {
		return fmt.Errorf("insert location index: %w", err)
	}

	for seq, ref := range parcel.Documents {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO parcel_documents (parcel_id, seq, document_ref)
			VALUES ($1, $2, $3)
		`, parcel.ID, seq, ref)
		if err != nil {
			return fmt.Errorf("insert registration document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save parcel: %w", err)
	}
	return nil
}

// MaxID returns the highest persisted parcel id, zero when none exist. Main
// seeds the ledger's id counter from it so restarts cannot re-mint an id that
// already names a persisted parcel.
func (s *PostgresParcelStore) MaxID(ctx context.Context) (uint64, error) {
	var maxID uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(id), 0) FROM parcels
	`).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("max parcel id: %w", err)
	}
	return maxID, nil
}

func (s *PostgresParcelStore) Get(ctx context.Context, parcelID uint64) (models.Parcel, error) {
	var parcel models.Parcel
	err := s.db.QueryRowContext(ctx, `
		SELECT id, location, survey_reference, verified, registered_at
		FROM parcels WHERE id = $1
	`, parcelID).Scan(&parcel.ID, &parcel.Location, &parcel.SurveyReference, &parcel.Verified, &parcel.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Parcel{}, ErrNotFound
		}
		return models.Parcel{}, fmt.Errorf("get parcel: %w", err)
	}
	docs, err := s.Documents(ctx, parcelID)
	if err != nil {
		return models.Parcel{}, err
	}
	parcel.Documents = docs
	return parcel, nil
}

func (s *PostgresParcelStore) Exists(ctx context.Context, parcelID uint64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM parcels WHERE id = $1)
	`, parcelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check parcel exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresParcelStore) IDByLocationHash(ctx context.Context, hash string) (uint64, error) {
	var parcelID uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT parcel_id FROM parcel_locations WHERE location_hash = $1
	`, hash).Scan(&parcelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("lookup location hash: %w", err)
	}
	return parcelID, nil
}

func (s *PostgresParcelStore) SetVerified(ctx context.Context, parcelID uint64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE parcels SET verified = TRUE WHERE id = $1
	`, parcelID)
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set verified rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresParcelStore) AppendDocument(ctx context.Context, parcelID uint64, documentRef string) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO parcel_documents (parcel_id, seq, document_ref)
		SELECT $1,
		       COALESCE((SELECT MAX(seq) + 1 FROM parcel_documents WHERE parcel_id = $1), 0),
		       $2
		WHERE EXISTS (SELECT 1 FROM parcels WHERE id = $1)
	`, parcelID, documentRef)
	if err != nil {
		return fmt.Errorf("append document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append document rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresParcelStore) Documents(ctx context.Context, parcelID uint64) ([]string, error) {
	exists, err := s.Exists(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_ref FROM parcel_documents
		WHERE parcel_id = $1 ORDER BY seq
	`, parcelID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
