package room

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostCount(r *Room) int {
	n := 0
	for _, m := range r.Members() {
		if r.IsHost(m.ConnID) {
			n++
		}
	}
	return n
}

func TestRegistry_GetOrCreate(t *testing.T) {
	g := NewRegistry()

	r, created := g.GetOrCreate("r1")
	require.True(t, created)
	assert.Equal(t, "r1", r.ID)
	assert.True(t, r.Empty())
	_, hosted := r.Host()
	assert.False(t, hosted)
	assert.Nil(t, r.CurrentVideo())

	again, created := g.GetOrCreate("r1")
	assert.False(t, created)
	assert.Same(t, r, again)
	assert.Equal(t, 1, g.Len())
}

func TestRegistry_GetAbsent(t *testing.T) {
	g := NewRegistry()
	_, ok := g.Get("nope")
	assert.False(t, ok)

	g.Remove("nope")
	assert.Equal(t, 0, g.Len())
}

func TestRegistry_UserCountTracksJoins(t *testing.T) {
	g := NewRegistry()

	for i := 1; i <= 5; i++ {
		_, res := g.Join("r1", fmt.Sprintf("c%d", i), fmt.Sprintf("user%d", i), false)
		assert.Equal(t, i, res.UserCount)
	}

	_, leaveRes, ok := g.Leave("r1", "c3")
	require.True(t, ok)
	assert.Equal(t, 4, leaveRes.UserCount)

	_, res := g.Join("r1", "c6", "user6", false)
	assert.Equal(t, 5, res.UserCount)
}

func TestRegistry_FirstJoinerIsHost(t *testing.T) {
	g := NewRegistry()

	r, res := g.Join("r1", "a", "alice", false)
	assert.True(t, res.Created)
	assert.True(t, res.IsHost)
	host, ok := r.Host()
	assert.True(t, ok)
	assert.Equal(t, "alice", host)

	_, res = g.Join("r1", "b", "bob", false)
	assert.False(t, res.Created)
	assert.False(t, res.IsHost)
	assert.Equal(t, 1, hostCount(r))
}

func TestRegistry_LastLeaveDeletesRoom(t *testing.T) {
	g := NewRegistry()
	r, _ := g.Join("r1", "a", "alice", false)
	r.SetCurrentVideo(json.RawMessage(`{"video":"x","t":0}`))
	r.StartTyping("alice")

	_, res, ok := g.Leave("r1", "a")
	require.True(t, ok)
	assert.True(t, res.Empty)
	assert.False(t, res.HostChanged)

	_, ok = g.Get("r1")
	assert.False(t, ok)

	fresh, res2 := g.Join("r1", "b", "bob", false)
	assert.True(t, res2.Created)
	assert.NotSame(t, r, fresh)
	assert.Nil(t, fresh.CurrentVideo())
	assert.Empty(t, fresh.Typing())
	host, _ := fresh.Host()
	assert.Equal(t, "bob", host)
}

func TestRegistry_LeaveUnknown(t *testing.T) {
	g := NewRegistry()

	_, _, ok := g.Leave("ghost", "a")
	assert.False(t, ok)

	g.Join("r1", "a", "alice", false)
	_, _, ok = g.Leave("r1", "stranger")
	assert.False(t, ok)
	assert.Equal(t, 1, g.Len())
}

func TestRegistry_Summaries(t *testing.T) {
	g := NewRegistry()
	g.Join("b", "c1", "bob", false)
	r, _ := g.Join("a", "c2", "alice", false)
	g.Join("a", "c3", "carol", false)
	r.SetCurrentVideo(json.RawMessage(`{"video":"v"}`))

	got := g.Summaries()
	require.Len(t, got, 2)
	assert.Equal(t, Summary{RoomID: "a", UserCount: 2, Host: "alice", HasVideo: true}, got[0])
	assert.Equal(t, Summary{RoomID: "b", UserCount: 1, Host: "bob", HasVideo: false}, got[1])
}

func TestRoom_Snapshot(t *testing.T) {
	g := NewRegistry()
	r, _ := g.Join("r1", "a", "alice", false)
	g.Join("r1", "b", "bob", false)
	r.SetCurrentVideo(json.RawMessage(`{"video":"x"}`))
	r.StartTyping("bob")

	snap := r.Snapshot()
	assert.Equal(t, "r1", snap.RoomID)
	assert.Equal(t, "alice", snap.Host)
	assert.Equal(t, 2, snap.UserCount)
	assert.Equal(t, []MemberView{{Username: "alice", IsHost: true}, {Username: "bob", IsHost: false}}, snap.Members)
	assert.JSONEq(t, `{"video":"x"}`, string(snap.CurrentVideo))
	assert.Equal(t, []string{"bob"}, snap.Typing)
}

func TestRoom_ConnIDsExcludesSender(t *testing.T) {
	g := NewRegistry()
	r, _ := g.Join("r1", "a", "alice", false)
	g.Join("r1", "b", "bob", false)
	g.Join("r1", "c", "carol", false)

	assert.Equal(t, []string{"a", "b", "c"}, r.ConnIDs(""))
	assert.Equal(t, []string{"a", "c"}, r.ConnIDs("b"))
}
