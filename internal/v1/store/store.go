// Package store persists player accounts, ratings and friendships.
package store

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// StartingElo is the rating assigned to a player on first sight.
const StartingElo = 1200

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUsername    = errors.New("username can only contain letters, numbers, and underscores")
	ErrSelfFriendship     = errors.New("cannot befriend yourself")
	ErrAlreadyFriends     = errors.New("already friends")
	ErrNoPendingRequest   = errors.New("no pending friend request")
	ErrRequestOutstanding = errors.New("friend request already pending")
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// ValidateUsername enforces the account naming rules: 3-20 characters
// from letters, digits and underscore.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// User is a persisted player account. GamesPlayed is derived from the
// per-result counters at read time.
type User struct {
	Username    string
	Elo         int
	Wins        int
	Losses      int
	Draws       int
	GamesPlayed int
	CreatedAt   time.Time
}

// GameResult is the outcome of a game from one player's side.
type GameResult string

const (
	ResultWin  GameResult = "win"
	ResultLoss GameResult = "loss"
	ResultDraw GameResult = "draw"
)

// UserStore is the account and rating persistence the hub depends on.
type UserStore interface {
	// GetUser fetches an account; ErrUserNotFound when absent.
	GetUser(ctx context.Context, username string) (User, error)
	// EnsureUser returns the account for a username, creating it at
	// StartingElo on first sight.
	EnsureUser(ctx context.Context, username string) (User, error)
	// UpdateStats records one game outcome and the player's new rating.
	UpdateStats(ctx context.Context, username string, result GameResult, newElo int) error
}

// FriendStore manages the friendship graph. Requests are directed;
// accepting one makes the friendship mutual.
type FriendStore interface {
	SendFriendRequest(ctx context.Context, from, to string) error
	AcceptFriendRequest(ctx context.Context, username, from string) error
	DeclineFriendRequest(ctx context.Context, username, from string) error
	RemoveFriend(ctx context.Context, username, friend string) error
	// GetFriends lists confirmed friends.
	GetFriends(ctx context.Context, username string) ([]string, error)
	// GetPendingRequests lists usernames with an open request to this
	// player.
	GetPendingRequests(ctx context.Context, username string) ([]string, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	FriendStore
	Close() error
}
