package roster

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/unicode/norm"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Added index on participants.name_key
const currentSchemaVersion = 2

// MaxNameLength bounds participant names, in runes.
const MaxNameLength = 100

var (
	// ErrNotFound is returned when no participant matches.
	ErrNotFound = errors.New("participant not found")

	// ErrInvalid is returned for an empty or oversized name or path.
	ErrInvalid = errors.New("invalid participant")

	// ErrConflict is returned when a name or path is already registered to
	// another participant.
	ErrConflict = errors.New("name or path already registered")
)

// Participant is one registered module owner.
type Participant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Roster provides durable storage for participants.
type Roster struct {
	db  *sql.DB
	now func() time.Time
	ids func() string
}

// Option configures a Roster.
type Option func(*Roster)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Roster) { r.now = now }
}

// WithIDs replaces the participant id generator.
func WithIDs(ids func() string) Option {
	return func(r *Roster) { r.ids = ids }
}

// NewID returns a fresh participant id: "usr_" and 32 hex digits.
func NewID() string {
	u := uuid.New()
	return "usr_" + strings.ReplaceAll(u.String(), "-", "")
}

// Open creates or opens the roster database at path and applies pragmas
// and migrations. Safe to call on an existing database.
func Open(dbPath string, opts ...Option) (*Roster, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	r := &Roster{db: db, now: time.Now, ids: NewID}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close closes the database.
func (r *Roster) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < 1 {
		if _, err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_participants_name_key
			ON participants(name_key)
		`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	if version < 2 {
		// Fails on rosters that already hold two participants with one name.
		if _, err := db.Exec(`
			DROP INDEX IF EXISTS idx_participants_name_key;
			CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_name_key_unique
			ON participants(name_key);
		`); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// CanonicalPath trims p, turns backslashes into slashes and cleans the
// result. An empty or blank path stays empty.
func CanonicalPath(p string) string {
	s := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if s == "" {
		return ""
	}
	return path.Clean(s)
}

// NormalizeName trims name and applies Unicode NFC, so visually identical
// names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func validate(name, p string) error {
	if name == "" || p == "" {
		return fmt.Errorf("%w: name and path required", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalid, MaxNameLength)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

const selectColumns = `SELECT id, name, path, created_at, updated_at FROM participants`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (Participant, error) {
	var p Participant
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Path, &created, &updated); err != nil {
		return Participant{}, err
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Participant{}, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Participant{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return p, nil
}

func (r *Roster) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}
