package room

import (
	"encoding/json"
	"sort"
)

// Member is a single connection's presence in a room.
type Member struct {
	ConnID   string
	Username string
	Seq      uint64 // join order within the room
}

// Room holds the state of one synchronization scope. A Room is not safe for
// concurrent use; it belongs to the goroutine that owns its Registry.
type Room struct {
	ID string

	members      map[string]*Member // connID -> member
	host         string
	hosted       bool
	currentVideo json.RawMessage
	typing       map[string]struct{}
	nextSeq      uint64
}

func newRoom(id string) *Room {
	return &Room{
		ID:      id,
		members: make(map[string]*Member),
		typing:  make(map[string]struct{}),
	}
}

// Member returns the member registered under connID.
func (r *Room) Member(connID string) (*Member, bool) {
	m, ok := r.members[connID]
	return m, ok
}

func (r *Room) UserCount() int {
	return len(r.members)
}

func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// Members returns the current members ordered by join sequence.
func (r *Room) Members() []*Member {
	out := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// ConnIDs returns the connection ids of every member except exclude, in join
// order. An empty exclude selects the whole room.
func (r *Room) ConnIDs(exclude string) []string {
	members := r.Members()
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.ConnID == exclude {
			continue
		}
		ids = append(ids, m.ConnID)
	}
	return ids
}

// Host returns the current host username.
func (r *Room) Host() (string, bool) {
	return r.host, r.hosted
}

// IsHost reports whether the member behind connID currently holds host
// authority. It is derived from the room's host on every call.
func (r *Room) IsHost(connID string) bool {
	m, ok := r.members[connID]
	if !ok || !r.hosted {
		return false
	}
	return m.Username == r.host
}

func (r *Room) CurrentVideo() json.RawMessage {
	return r.currentVideo
}

func (r *Room) SetCurrentVideo(v json.RawMessage) {
	r.currentVideo = v
}

func (r *Room) hasUsername(username string) bool {
	for _, m := range r.members {
		if m.Username == username {
			return true
		}
	}
	return false
}

// MemberView is the externally visible shape of a member.
type MemberView struct {
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
}

// Snapshot is a copy of a room's state safe to hand to other goroutines.
type Snapshot struct {
	RoomID       string          `json:"roomId"`
	Host         string          `json:"host,omitempty"`
	UserCount    int             `json:"userCount"`
	Members      []MemberView    `json:"members"`
	CurrentVideo json.RawMessage `json:"currentVideo"`
	Typing       []string        `json:"typing"`
}

// Snapshot copies the room's current state.
func (r *Room) Snapshot() Snapshot {
	members := r.Members()
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, MemberView{Username: m.Username, IsHost: r.IsHost(m.ConnID)})
	}

	var video json.RawMessage
	if r.currentVideo != nil {
		video = append(json.RawMessage(nil), r.currentVideo...)
	}

	return Snapshot{
		RoomID:       r.ID,
		Host:         r.host,
		UserCount:    len(r.members),
		Members:      views,
		CurrentVideo: video,
		Typing:       r.Typing(),
	}
}
