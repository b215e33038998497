// Package sqlite persists session tokens in a local SQLite file so a
// session survives process restarts within the token lifetimes. Token
// values are sealed at rest.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aussiebroadwan/ledger/pkg/cryptox"
	"github.com/aussiebroadwan/ledger/pkg/ledgersdk"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Store is a ledgersdk.TokenStore backed by SQLite.
type Store struct {
	db        *sql.DB
	sealer    *cryptox.Sealer
	lifetimes ledgersdk.TokenLifetimes
	now       func() time.Time
}

var _ ledgersdk.TokenStore = (*Store)(nil)

// Open opens (creating if needed) the token database at path, applies
// migrations and purges expired tokens. The file is only readable by the
// current user.
func Open(ctx context.Context, path string, sealer *cryptox.Sealer, lifetimes ledgersdk.TokenLifetimes) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create token db: %w", err)
	}
	_ = f.Close()
	if err := os.Chmod(path, 0o600); err != nil {
		return nil, fmt.Errorf("restrict token db: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// One connection keeps writes serialised within the process
	db.SetMaxOpenConns(1)

	s := &Store{
		db:        db,
		sealer:    sealer,
		lifetimes: lifetimes,
		now:       time.Now,
	}

	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate token db: %w", err)
	}
	if _, err := s.Purge(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SetClock replaces the store's time source.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, kindAccess)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, kindRefresh)
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, kindAccess, token, s.lifetimes.Access)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, kindRefresh, token, s.lifetimes.Refresh)
}

func (s *Store) get(ctx context.Context, kind string) (string, error) {
	var (
		sealed    []byte
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM tokens WHERE kind = ?`, kind,
	).Scan(&sealed, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s token: %w", kind, err)
	}

	if expiresAt.Valid && s.now().UnixMilli() >= expiresAt.Int64 {
		return "", nil
	}

	plain, err := s.sealer.Open(sealed, []byte(kind))
	if err != nil {
		return "", fmt.Errorf("open %s token: %w", kind, err)
	}
	return string(plain), nil
}

func (s *Store) set(ctx context.Context, kind, token string, ttl time.Duration) error {
	if token == "" {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE kind = ?`, kind); err != nil {
			return fmt.Errorf("clear %s token: %w", kind, err)
		}
		return nil
	}

	sealed, err := s.sealer.Seal([]byte(token), []byte(kind))
	if err != nil {
		return fmt.Errorf("seal %s token: %w", kind, err)
	}

	now := s.now()
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(ttl).UnixMilli(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tokens (kind, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		kind, sealed, expiresAt, now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store %s token: %w", kind, err)
	}
	return nil
}

// Purge deletes expired tokens and reports how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge tokens: %w", err)
	}
	return res.RowsAffected()
}
