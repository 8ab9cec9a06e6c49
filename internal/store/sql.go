// internal/store/sql.go
//
// SQL Store for SQLite and PostgreSQL.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations for the dialect (idempotent, recorded
//     in _migrations).
//   - Saving a board as rows of board_tiles, replaced in one transaction.
//
// Queries are written with ? placeholders and rebound for postgres.

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"           // register "postgres" driver
	_ "github.com/mattn/go-sqlite3" // register "sqlite3" driver
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dorfhelper/assets"
	"github.com/robalobadob/dorfhelper/internal/game"
)

// Dialects understood by NewSQLStore.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type sqlStore struct {
	db      *sql.DB
	dialect string
	Config
}

// NewSQLStore opens the database and applies pending migrations.
// For sqlite, dsn is a file path; for postgres, a connection URL.
func NewSQLStore(ctx context.Context, dialect, dsn string, cfg Config) (Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		db, err = openSQLite(dsn)
	case DialectPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, errors.Errorf("unknown sql dialect %q", dialect)
	}
	if err != nil {
		return nil, err
	}
	s := &sqlStore{db: db, dialect: dialect, Config: cfg}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// openSQLite opens (and creates if missing) a SQLite database file.
func openSQLite(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "mkdir %s", dir)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set pragmas")
	}
	return db, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func rebind(dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) q(query string) string { return rebind(s.dialect, query) }

// migrate applies each embedded script once, in its own transaction.
func (s *sqlStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return errors.Wrap(err, "create _migrations")
	}
	migrations, err := assets.Migrations(s.dialect)
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}
	for _, m := range migrations {
		var done int
		err := s.db.QueryRowContext(ctx, s.q(`SELECT 1 FROM _migrations WHERE name=?`), m.Name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", m.Name).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return errors.Wrap(err, "query _migrations")
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "apply %s", m.Name)
		}
		if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO _migrations(name) VALUES (?)`), m.Name); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "record %s", m.Name)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit %s", m.Name)
		}
		log.Info().Str("migration", m.Name).Str("dialect", s.dialect).Msg("applied")
	}
	return nil
}

func (s *sqlStore) Load(ctx context.Context, board string) ([]game.Record, error) {
	var out []game.Record
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var one int
		err := s.db.QueryRowContext(ctx, s.q(`SELECT 1 FROM boards WHERE name=?`), board).Scan(&one)
		if err == sql.ErrNoRows {
			return errors.Wrapf(ErrNotFound, "board %q", board)
		}
		if err != nil {
			return err
		}

		rows, err := s.db.QueryContext(ctx, s.q(`
			SELECT x, y, e0, e1, e2, e3, e4, e5
			FROM board_tiles
			WHERE board=?
			ORDER BY seq ASC`), board)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r game.Record
			es := &r.Edges
			if err := rows.Scan(&r.X, &r.Y, &es[0], &es[1], &es[2], &es[3], &es[4], &es[5]); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "loading board")
	}
	return out, nil
}

func (s *sqlStore) Save(ctx context.Context, board string, records []game.Record) error {
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := s.replace(ctx, tx, board, records); err != nil {
			if err2 := tx.Rollback(); err2 != nil {
				return errors.Wrapf(err2, "rolling back transaction due to %v", err)
			}
			return err
		}
		return tx.Commit()
	})
	return errors.Wrap(err, "saving board")
}

func (s *sqlStore) replace(ctx context.Context, tx *sql.Tx, board string, records []game.Record) error {
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO boards(name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET saved_at = CURRENT_TIMESTAMP`), board); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM board_tiles WHERE board=?`), board); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, s.q(`
		INSERT INTO board_tiles (board, seq, x, y, e0, e1, e2, e3, e4, e5)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range records {
		es := r.Edges
		if _, err := stmt.ExecContext(ctx, board, i, r.X, r.Y, es[0], es[1], es[2], es[3], es[4], es[5]); err != nil {
			return errors.Wrapf(err, "tile %d", i)
		}
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
