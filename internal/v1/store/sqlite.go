package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username   TEXT PRIMARY KEY,
	elo        INTEGER NOT NULL,
	wins       INTEGER NOT NULL DEFAULT 0,
	losses     INTEGER NOT NULL DEFAULT 0,
	draws      INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS friendships (
	username TEXT NOT NULL REFERENCES users(username),
	friend   TEXT NOT NULL REFERENCES users(username),
	PRIMARY KEY (username, friend)
);

CREATE TABLE IF NOT EXISTS friend_requests (
	from_user  TEXT NOT NULL REFERENCES users(username),
	to_user    TEXT NOT NULL REFERENCES users(username),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (from_user, to_user)
);
`

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the
// schema. Use ":memory:" for tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The sqlite driver does not tolerate concurrent writers on one
	// connection pool entry; a single connection keeps writes serial.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks database liveness for health reporting.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) GetUser(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT username, elo, wins, losses, draws, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.Elo, &u.Wins, &u.Losses, &u.Draws, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	u.GamesPlayed = u.Wins + u.Losses + u.Draws
	return u, nil
}

func (s *SQLiteStore) EnsureUser(ctx context.Context, username string) (User, error) {
	if err := ValidateUsername(username); err != nil {
		return User{}, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, elo, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO NOTHING`,
		username, StartingElo, time.Now().UTC(),
	)
	if err != nil {
		return User{}, fmt.Errorf("ensure user: %w", err)
	}
	return s.GetUser(ctx, username)
}

func (s *SQLiteStore) UpdateStats(ctx context.Context, username string, result GameResult, newElo int) error {
	var column string
	switch result {
	case ResultWin:
		column = "wins"
	case ResultLoss:
		column = "losses"
	case ResultDraw:
		column = "draws"
	default:
		return fmt.Errorf("unknown game result %q", result)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET elo = ?, `+column+` = `+column+` + 1 WHERE username = ?`,
		newElo, username,
	)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *SQLiteStore) SendFriendRequest(ctx context.Context, from, to string) error {
	if from == to {
		return ErrSelfFriendship
	}
	if _, err := s.GetUser(ctx, to); err != nil {
		return err
	}

	friends, err := s.areFriends(ctx, from, to)
	if err != nil {
		return err
	}
	if friends {
		return ErrAlreadyFriends
	}

	// A request in either direction counts as outstanding; a crossed
	// request is accepted instead of duplicated.
	reverse, err := s.hasRequest(ctx, to, from)
	if err != nil {
		return err
	}
	if reverse {
		return s.AcceptFriendRequest(ctx, from, to)
	}
	forward, err := s.hasRequest(ctx, from, to)
	if err != nil {
		return err
	}
	if forward {
		return ErrRequestOutstanding
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO friend_requests (from_user, to_user) VALUES (?, ?)`, from, to)
	if err != nil {
		return fmt.Errorf("send friend request: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AcceptFriendRequest(ctx context.Context, username, from string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE from_user = ? AND to_user = ?`, from, username)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	if n == 0 {
		return ErrNoPendingRequest
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO friendships (username, friend) VALUES (?, ?), (?, ?)`,
		username, from, from, username)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) DeclineFriendRequest(ctx context.Context, username, from string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE from_user = ? AND to_user = ?`, from, username)
	if err != nil {
		return fmt.Errorf("decline friend request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decline friend request: %w", err)
	}
	if n == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

func (s *SQLiteStore) RemoveFriend(ctx context.Context, username, friend string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships
		 WHERE (username = ? AND friend = ?) OR (username = ? AND friend = ?)`,
		username, friend, friend, username)
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetFriends(ctx context.Context, username string) ([]string, error) {
	return s.collect(ctx,
		`SELECT friend FROM friendships WHERE username = ? ORDER BY friend`, username)
}

func (s *SQLiteStore) GetPendingRequests(ctx context.Context, username string) ([]string, error) {
	return s.collect(ctx,
		`SELECT from_user FROM friend_requests WHERE to_user = ? ORDER BY created_at`, username)
}

func (s *SQLiteStore) collect(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) areFriends(ctx context.Context, a, b string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM friendships WHERE username = ? AND friend = ?`, a, b).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) hasRequest(ctx context.Context, from, to string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM friend_requests WHERE from_user = ? AND to_user = ?`, from, to).Scan(&n)
	return n > 0, err
}
