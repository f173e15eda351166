package stubapi

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aparkhill/activity-enrollment-client/internal/model"
)

// SQLiteStore persists the stub server's state in a sqlite file so a
// development server survives restarts. Tests use MemoryStore instead.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open sqlite database, creates the schema, and
// seeds the activity table when it is empty.
func NewSQLiteStore(db *sql.DB, seed []model.Activity) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	if err := s.seed(seed); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	activityTable := `CREATE TABLE IF NOT EXISTS activities (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL,
		schedule TEXT NOT NULL,
		max_participants INTEGER NOT NULL
	);`

	participantTable := `CREATE TABLE IF NOT EXISTS participants (
		id TEXT PRIMARY KEY,
		activity_name TEXT NOT NULL,
		email TEXT NOT NULL,
		position INTEGER NOT NULL,
		UNIQUE(activity_name, email)
	);`

	userTable := `CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL
	);`

	for _, stmt := range []string{activityTable, participantTable, userTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// seed inserts the default activities if the table is empty.
func (s *SQLiteStore) seed(seed []model.Activity) error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, a := range seed {
		if _, err := s.db.Exec(
			`INSERT INTO activities (name, description, schedule, max_participants) VALUES (?, ?, ?, ?)`,
			a.Name, a.Description, a.Schedule, a.MaxParticipants,
		); err != nil {
			return fmt.Errorf("seed activity %q: %w", a.Name, err)
		}
		for i, email := range a.Participants {
			if _, err := s.db.Exec(
				`INSERT INTO participants (id, activity_name, email, position) VALUES (?, ?, ?, ?)`,
				uuid.New().String(), a.Name, email, i,
			); err != nil {
				return fmt.Errorf("seed participant %q: %w", email, err)
			}
		}
	}
	return nil
}

// Activities returns the collection in insertion order with each
// roster in enrollment order.
func (s *SQLiteStore) Activities() ([]model.Activity, error) {
	rows, err := s.db.Query(
		`SELECT name, description, schedule, max_participants FROM activities ORDER BY position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range activities {
		participants, err := s.participants(activities[i].Name)
		if err != nil {
			return nil, err
		}
		activities[i].Participants = participants
	}
	return activities, nil
}

func (s *SQLiteStore) participants(activity string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT email FROM participants WHERE activity_name = ? ORDER BY position ASC`,
		activity,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// AddParticipant enrolls email in the named activity.
func (s *SQLiteStore) AddParticipant(activity, email string) error {
	var capacity, enrolled int
	err := s.db.QueryRow(`SELECT max_participants FROM activities WHERE name = ?`, activity).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("look up activity: %w", err)
	}

	var dup int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM participants WHERE activity_name = ? AND email = ?`,
		activity, email,
	).Scan(&dup); err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if dup > 0 {
		return ErrAlreadySignedUp
	}

	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM participants WHERE activity_name = ?`, activity,
	).Scan(&enrolled); err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if enrolled >= capacity {
		return ErrActivityFull
	}

	if _, err := s.db.Exec(
		`INSERT INTO participants (id, activity_name, email, position) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), activity, email, enrolled,
	); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// RemoveParticipant withdraws email from the named activity.
func (s *SQLiteStore) RemoveParticipant(activity, email string) error {
	var exists int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM activities WHERE name = ?`, activity,
	).Scan(&exists); err != nil {
		return fmt.Errorf("look up activity: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	res, err := s.db.Exec(
		`DELETE FROM participants WHERE activity_name = ? AND email = ?`,
		activity, email,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotSignedUp
	}
	return nil
}

// CreateUser stores a new account.
func (s *SQLiteStore) CreateUser(username, passwordHash string) error {
	var exists int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM users WHERE username = ?`, username,
	).Scan(&exists); err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if exists > 0 {
		return ErrUserExists
	}

	if _, err := s.db.Exec(
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserHash returns the stored password hash for username.
func (s *SQLiteStore) UserHash(username string) (string, error) {
	var hash string
	err := s.db.QueryRow(
		`SELECT password_hash FROM users WHERE username = ?`, username,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	return hash, nil
}
