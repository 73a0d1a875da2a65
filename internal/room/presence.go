package room

import "sort"

// StartTyping marks username as typing. It reports whether the set changed.
func (r *Room) StartTyping(username string) bool {
	if _, ok := r.typing[username]; ok {
		return false
	}
	r.typing[username] = struct{}{}
	return true
}

// StopTyping clears username from the typing set. It reports whether the set
// changed.
func (r *Room) StopTyping(username string) bool {
	if _, ok := r.typing[username]; !ok {
		return false
	}
	delete(r.typing, username)
	return true
}

func (r *Room) IsTyping(username string) bool {
	_, ok := r.typing[username]
	return ok
}

// Typing returns the usernames currently typing, sorted.
func (r *Room) Typing() []string {
	out := make([]string, 0, len(r.typing))
	for u := range r.typing {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
