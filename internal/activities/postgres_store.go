// internal/activities/postgres_store.go
package activities

import (
	"context"
	"database/sql"
	"fmt"

	"mergington-activities/internal/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS activities (
	name             TEXT PRIMARY KEY,
	position         INTEGER NOT NULL,
	description      TEXT NOT NULL,
	schedule         TEXT NOT NULL,
	max_participants INTEGER NOT NULL CHECK (max_participants > 0)
);
CREATE TABLE IF NOT EXISTS activity_participants (
	id            BIGSERIAL PRIMARY KEY,
	activity_name TEXT NOT NULL REFERENCES activities(name) ON DELETE CASCADE,
	email         TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS activity_participants_activity_idx
	ON activity_participants (activity_name, id);
`

// appendQuery inserts only when the activity exists. The CTE's rows are not visible to
// the outer count, hence the +1 in AppendParticipant.
const appendQuery = `
WITH inserted AS (
	INSERT INTO activity_participants (activity_name, email)
	SELECT name, $2 FROM activities WHERE name = $1
	RETURNING id
)
SELECT (SELECT COUNT(*) FROM inserted), COUNT(*)
FROM activity_participants WHERE activity_name = $1`

// PostgresStore persists rosters in activity_participants; id order is signup order.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tables when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate activities schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Seed(ctx context.Context, catalog models.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_participants`); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM activities`); err != nil {
		return fmt.Errorf("clear activities: %w", err)
	}

	for i, a := range catalog {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activities (name, position, description, schedule, max_participants)
			VALUES ($1, $2, $3, $4, $5)`,
			a.Name, i, a.Description, a.Schedule, a.MaxParticipants,
		)
		if err != nil {
			return fmt.Errorf("insert activity %q: %w", a.Name, err)
		}
		for _, email := range a.Participants {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO activity_participants (activity_name, email) VALUES ($1, $2)`,
				a.Name, email,
			)
			if err != nil {
				return fmt.Errorf("insert participant for %q: %w", a.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) (models.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description, schedule, max_participants
		FROM activities ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var out models.Catalog
	index := make(map[string]int)
	for rows.Next() {
		a := models.Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		index[a.Name] = len(out)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	prows, err := s.db.QueryContext(ctx, `
		SELECT activity_name, email FROM activity_participants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if i, ok := index[name]; ok {
			out[i].Participants = append(out[i].Participants, email)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	if out == nil {
		out = models.Catalog{}
	}
	return out, nil
}

func (s *PostgresStore) AppendParticipant(ctx context.Context, activityName, email string) (int, error) {
	var inserted, existing int
	if err := s.db.QueryRowContext(ctx, appendQuery, activityName, email).Scan(&inserted, &existing); err != nil {
		return 0, fmt.Errorf("append participant: %w", err)
	}
	if inserted == 0 {
		return 0, fmt.Errorf("%w: %s", ErrActivityNotFound, activityName)
	}
	return existing + 1, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
