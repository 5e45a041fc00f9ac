// internal/game/game_store.go
package game

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	roomIDLength = 6
	roomIDChars  = "abcdefghijklmnopqrstuvwxyz0123456789"

	directoryQueueSize = 1024
	directoryTimeout   = 3 * time.Second
)

// directoryOp is a pending directory write. A nil summary means remove.
type directoryOp struct {
	roomID  string
	summary *RoomSummary
}

// GameStore is the room registry and game engine. It owns every active game,
// keyed by room id, and serializes all operations on them: each operation runs
// validation, mutation and broadcast to completion under one lock.
type GameStore struct {
	mu    sync.Mutex
	games map[string]*Game

	// Rules applies to rooms created after it is set.
	Rules Rules
	// Out delivers broadcasts. Must be set before any operation is called.
	Out Broadcaster
	// Directory, when set, receives a summary after every room change. Writes
	// happen on the goroutine started by Run, never under the store lock.
	Directory Directory
	// DirectoryHeartbeat, when > 0, makes Run republish every room at this
	// interval so directories that expire entries keep idle rooms listed.
	DirectoryHeartbeat time.Duration
	// NotifyRejections sends an error event to the sender of a dropped request.
	// Off by default: rejected requests are dropped silently.
	NotifyRejections bool
	Logger           *logrus.Logger

	rng    *rand.Rand
	now    func() time.Time
	dirOps chan directoryOp
}

// NewGameStore returns an empty store broadcasting through out.
func NewGameStore(out Broadcaster, logger *logrus.Logger) *GameStore {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &GameStore{
		games:  make(map[string]*Game),
		Rules:  DefaultRules(),
		Out:    out,
		Logger: logger,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		now:    time.Now,
		dirOps: make(chan directoryOp, directoryQueueSize),
	}
}

// Len returns the number of rooms in the registry.
func (s *GameStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// Snapshot returns a deep copy of the room's game.
func (s *GameStore) Snapshot(roomID string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[roomID]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// Summaries lists every room straight from the registry, oldest first.
func (s *GameStore) Summaries() []RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RoomSummary, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g.Summary())
	}
	SortSummaries(out)
	return out
}

// newRoomIDUnsafe picks an unused room id. Assumes lock is held.
func (s *GameStore) newRoomIDUnsafe() string {
	for {
		b := make([]byte, roomIDLength)
		for i := range b {
			b[i] = roomIDChars[s.rng.IntN(len(roomIDChars))]
		}
		id := string(b)
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// broadcastUnsafe sends a full-state event for g to its room. Assumes lock is held.
func (s *GameStore) broadcastUnsafe(g *Game, evType EventType) {
	s.Out.BroadcastRoom(g.RoomID, NewEvent(evType, g))
}

// publishUnsafe queues a directory update for g. Assumes lock is held, which
// keeps queued updates in the same order as the mutations that produced them.
func (s *GameStore) publishUnsafe(g *Game) {
	if s.Directory == nil {
		return
	}
	summary := g.Summary()
	s.enqueueDirectory(directoryOp{roomID: g.RoomID, summary: &summary})
}

func (s *GameStore) enqueueDirectory(op directoryOp) {
	select {
	case s.dirOps <- op:
	default:
		s.Logger.WithField("room", op.roomID).Warn("directory queue full, dropping update")
	}
}

// RefreshDirectory queues a publish of every room's current summary.
func (s *GameStore) RefreshDirectory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		s.publishUnsafe(g)
	}
}

// Run drives the background work of the store until ctx is done: it applies
// queued directory writes, republishes rooms every DirectoryHeartbeat and,
// when reapInterval > 0, deletes rooms that have been empty for longer than
// emptyTTL.
func (s *GameStore) Run(ctx context.Context, reapInterval, emptyTTL time.Duration) {
	var tick <-chan time.Time
	if reapInterval > 0 {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var heartbeat <-chan time.Time
	if s.Directory != nil && s.DirectoryHeartbeat > 0 {
		ticker := time.NewTicker(s.DirectoryHeartbeat)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case op := <-s.dirOps:
			s.applyDirectory(ctx, op)
		case <-heartbeat:
			s.RefreshDirectory()
		case <-tick:
			if reaped := s.Reap(emptyTTL); len(reaped) > 0 {
				s.Logger.WithField("rooms", reaped).Info("reaped empty rooms")
			}
		}
	}
}

func (s *GameStore) applyDirectory(ctx context.Context, op directoryOp) {
	if s.Directory == nil {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, directoryTimeout)
	defer cancel()

	var err error
	if op.summary != nil {
		err = s.Directory.Publish(opCtx, *op.summary)
	} else {
		err = s.Directory.Remove(opCtx, op.roomID)
	}
	if err != nil {
		s.Logger.WithField("room", op.roomID).Warnf("directory update failed: %v", err)
	}
}

// Reap deletes rooms that have had no players for longer than ttl and returns their ids.
func (s *GameStore) Reap(ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var reaped []string
	for id, g := range s.games {
		if len(g.Players) == 0 && g.EmptyFor(now) > ttl {
			delete(s.games, id)
			reaped = append(reaped, id)
			if s.Directory != nil {
				s.enqueueDirectory(directoryOp{roomID: id})
			}
		}
	}
	return reaped
}
