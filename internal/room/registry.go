package room

import "sort"

// Registry maps room ids to rooms. A room is present exactly while it has
// members. Registry does no locking: it is owned by a single goroutine.
type Registry struct {
	rooms     map[string]*Room
	successor SuccessorPolicy
	claim     ClaimPolicy
}

// Option configures a Registry.
type Option func(*Registry)

func WithSuccessorPolicy(p SuccessorPolicy) Option {
	return func(g *Registry) {
		if p != nil {
			g.successor = p
		}
	}
}

func WithClaimPolicy(p ClaimPolicy) Option {
	return func(g *Registry) {
		g.claim = p
	}
}

// NewRegistry creates an empty registry. Without options, successors are the
// earliest-joined remaining member and host claims on hosted rooms are
// rejected.
func NewRegistry(opts ...Option) *Registry {
	g := &Registry{
		rooms:     make(map[string]*Room),
		successor: EarliestJoined,
		claim:     ClaimReject,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetOrCreate returns the room for id, creating an empty one if needed.
func (g *Registry) GetOrCreate(id string) (*Room, bool) {
	if r, ok := g.rooms[id]; ok {
		return r, false
	}
	r := newRoom(id)
	g.rooms[id] = r
	return r, true
}

func (g *Registry) Get(id string) (*Room, bool) {
	r, ok := g.rooms[id]
	return r, ok
}

func (g *Registry) Remove(id string) {
	delete(g.rooms, id)
}

func (g *Registry) Len() int {
	return len(g.rooms)
}

func (g *Registry) ClaimPolicy() ClaimPolicy {
	return g.claim
}

// Join adds connID to room id, creating the room on first join and running
// host election.
func (g *Registry) Join(id, connID, username string, claimHost bool) (*Room, JoinResult) {
	r, created := g.GetOrCreate(id)
	res := r.join(connID, username, claimHost, g.claim)
	res.Created = created
	return r, res
}

// Leave removes connID from room id. When the room empties it is removed from
// the registry; otherwise host authority is transferred if the host left.
// Unknown rooms and non-members report false.
func (g *Registry) Leave(id, connID string) (*Room, LeaveResult, bool) {
	r, ok := g.rooms[id]
	if !ok {
		return nil, LeaveResult{}, false
	}
	res, ok := r.leave(connID, g.successor)
	if !ok {
		return r, LeaveResult{}, false
	}
	if res.Empty {
		delete(g.rooms, id)
	}
	return r, res, true
}

// Summary is a short description of a room for listings.
type Summary struct {
	RoomID    string `json:"roomId"`
	UserCount int    `json:"userCount"`
	Host      string `json:"host"`
	HasVideo  bool   `json:"hasVideo"`
}

// Summaries lists every room, ordered by id.
func (g *Registry) Summaries() []Summary {
	out := make([]Summary, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, Summary{
			RoomID:    r.ID,
			UserCount: r.UserCount(),
			Host:      r.host,
			HasVideo:  r.currentVideo != nil,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}
