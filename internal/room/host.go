package room

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned when a policy name cannot be resolved.
var ErrUnknownPolicy = errors.New("unknown policy")

// SuccessorPolicy picks the next host from the remaining members of a room.
// Candidates are ordered by join sequence and never empty.
type SuccessorPolicy func(candidates []*Member) *Member

// EarliestJoined hands authority to the longest-present member.
func EarliestJoined(candidates []*Member) *Member {
	return candidates[0]
}

// LatestJoined hands authority to the most recent joiner.
func LatestJoined(candidates []*Member) *Member {
	return candidates[len(candidates)-1]
}

// ParseSuccessorPolicy resolves a configured successor policy name.
func ParseSuccessorPolicy(name string) (SuccessorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "earliest":
		return EarliestJoined, nil
	case "latest":
		return LatestJoined, nil
	default:
		return nil, fmt.Errorf("successor policy %q: %w", name, ErrUnknownPolicy)
	}
}

// ClaimPolicy decides what happens when a joiner asks for host authority in a
// room that already has a host.
type ClaimPolicy int

const (
	// ClaimReject keeps the existing host; the claim is ignored.
	ClaimReject ClaimPolicy = iota
	// ClaimOverride lets the claimant take authority immediately.
	ClaimOverride
)

func (p ClaimPolicy) String() string {
	switch p {
	case ClaimOverride:
		return "override"
	default:
		return "reject"
	}
}

// ParseClaimPolicy resolves a configured claim policy name.
func ParseClaimPolicy(name string) (ClaimPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reject":
		return ClaimReject, nil
	case "override":
		return ClaimOverride, nil
	default:
		return ClaimReject, fmt.Errorf("claim policy %q: %w", name, ErrUnknownPolicy)
	}
}

// JoinResult describes the outcome of adding a member to a room.
type JoinResult struct {
	Member    *Member
	Created   bool
	IsHost    bool
	UserCount int

	// HostChanged is set when an existing host lost authority to the joiner.
	HostChanged  bool
	PreviousHost string

	// ClaimRejected is set when the joiner asked for authority and was refused.
	ClaimRejected bool
}

// LeaveResult describes the outcome of removing a member from a room.
type LeaveResult struct {
	Member    *Member
	UserCount int
	Empty     bool

	HostChanged  bool
	PreviousHost string
	NewHost      string

	// StoppedTyping is set when the departing username was dropped from the
	// typing set.
	StoppedTyping bool
}

func (r *Room) join(connID, username string, claimHost bool, policy ClaimPolicy) JoinResult {
	if m, ok := r.members[connID]; ok {
		return JoinResult{Member: m, IsHost: r.IsHost(connID), UserCount: len(r.members)}
	}

	r.nextSeq++
	m := &Member{ConnID: connID, Username: username, Seq: r.nextSeq}
	r.members[connID] = m

	res := JoinResult{Member: m, UserCount: len(r.members)}

	switch {
	case !r.hosted:
		r.host = username
		r.hosted = true
	case claimHost && username != r.host:
		if policy == ClaimOverride {
			res.PreviousHost = r.host
			res.HostChanged = true
			r.host = username
		} else {
			res.ClaimRejected = true
		}
	}

	res.IsHost = r.IsHost(connID)
	return res
}

func (r *Room) leave(connID string, successor SuccessorPolicy) (LeaveResult, bool) {
	m, ok := r.members[connID]
	if !ok {
		return LeaveResult{}, false
	}
	delete(r.members, connID)

	res := LeaveResult{Member: m, UserCount: len(r.members)}

	if len(r.members) == 0 {
		res.Empty = true
		r.host = ""
		r.hosted = false
		r.typing = make(map[string]struct{})
		return res, true
	}

	stillPresent := r.hasUsername(m.Username)

	if !stillPresent && r.StopTyping(m.Username) {
		res.StoppedTyping = true
	}

	if r.hosted && m.Username == r.host && !stillPresent {
		candidates := r.Members()
		next := successor(candidates)
		if next == nil {
			next = candidates[0]
		}
		res.HostChanged = true
		res.PreviousHost = r.host
		res.NewHost = next.Username
		r.host = next.Username
	}

	return res, true
}
