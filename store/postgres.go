package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pkg/errors"

	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/sample"
)

const schema = `
CREATE TABLE IF NOT EXISTS digit_samples (
	id         UUID PRIMARY KEY,
	label      SMALLINT NOT NULL CHECK (label BETWEEN 0 AND 9),
	image      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps samples in the digit_samples table.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects with the pgx driver and creates the table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sql.Open")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db.Ping")
	}

	s := NewPostgresStore(db)
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info.Println("sample store: postgres")
	return s, nil
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "can't create digit_samples")
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, image sample.Sample, label sample.Label) (Record, int, error) {
	r := Record{ID: uuid.New(), Image: image, Label: label}

	data, err := json.Marshal(image.Slice())
	if err != nil {
		return r, 0, err
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO digit_samples (id, label, image) VALUES ($1, $2, $3) RETURNING created_at`,
		r.ID.String(), int(label), string(data),
	).Scan(&r.Created)
	if err != nil {
		return r, 0, errors.Wrap(err, "insert sample")
	}

	count, err := s.Count(ctx)
	return r, count, err
}

func (s *PostgresStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, image, created_at FROM digit_samples ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "select samples")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			id    string
			label int
			data  []byte
			r     Record
		)
		if err := rows.Scan(&id, &label, &data, &r.Created); err != nil {
			return nil, errors.Wrap(err, "scan sample")
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "bad sample id %q", id)
		}
		if r.Label, err = sample.NewLabel(label); err != nil {
			return nil, err
		}
		var values []float64
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, errors.Wrapf(err, "bad image for sample %s", id)
		}
		var ok bool
		if r.Image, ok = sample.FromSlice(values); !ok {
			return nil, errors.Errorf("sample %s has %d values", id, len(values))
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate samples")
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM digit_samples`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count samples")
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
