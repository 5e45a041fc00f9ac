// internal/game/directory.go
package game

import (
	"context"
	"sort"
	"sync"
)

// Directory is a listing of live rooms. The GameStore publishes a summary after
// every change and removes rooms it reaps. Directory failures never affect play.
type Directory interface {
	Publish(ctx context.Context, summary RoomSummary) error
	Remove(ctx context.Context, roomID string) error
	List(ctx context.Context) ([]RoomSummary, error)
}

// MemoryDirectory keeps room summaries in memory only.
type MemoryDirectory struct {
	mu    sync.Mutex
	rooms map[string]RoomSummary
}

// NewMemoryDirectory returns an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		rooms: make(map[string]RoomSummary),
	}
}

// Publish stores or replaces the summary for its room.
func (d *MemoryDirectory) Publish(_ context.Context, summary RoomSummary) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[summary.RoomID] = summary
	return nil
}

// Remove drops the room from the listing.
func (d *MemoryDirectory) Remove(_ context.Context, roomID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, roomID)
	return nil
}

// List returns every room, oldest first.
func (d *MemoryDirectory) List(_ context.Context) ([]RoomSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]RoomSummary, 0, len(d.rooms))
	for _, s := range d.rooms {
		out = append(out, s)
	}
	SortSummaries(out)
	return out, nil
}

// SortSummaries orders summaries by creation time, then room id.
func SortSummaries(s []RoomSummary) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].RoomID < s[j].RoomID
		}
		return s[i].CreatedAt.Before(s[j].CreatedAt)
	})
}
