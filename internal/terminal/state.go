package terminal

import (
	"context"
	"time"

	"counterpos/m/domain"
)

// RecentLimit is how many recently added products a terminal remembers.
const RecentLimit = 10

// State is the ephemeral per-session data of one billing terminal.
type State struct {
	Cart   domain.Cart `json:"cart"`
	Recent []string    `json:"recent"`
}

func NewState() State {
	return State{Cart: domain.NewCart(), Recent: []string{}}
}

// TouchRecent moves productID to the front of the recent list.
func (s *State) TouchRecent(productID string) {
	recent := make([]string, 0, RecentLimit)
	recent = append(recent, productID)
	for _, id := range s.Recent {
		if id == productID {
			continue
		}
		if len(recent) == RecentLimit {
			break
		}
		recent = append(recent, id)
	}
	s.Recent = recent
}

func (s State) clone() State {
	out := State{Cart: s.Cart.Clone(), Recent: make([]string, len(s.Recent))}
	copy(out.Recent, s.Recent)
	return out
}

// Store keeps terminal state and revoked sessions, keyed by session id.
// Update runs fn with exclusive access to the session's state; when fn
// returns an error nothing is saved.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Update(ctx context.Context, sessionID string, fn func(*State) error) (State, error)
	Drop(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
