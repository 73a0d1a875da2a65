package domain

import "time"

// Session is the per-connection state: which room the connection is in and
// the username it joined with. It is read and written only by the hub loop.
type Session struct {
	ID        string
	Username  string
	RoomID    string
	CreatedAt time.Time
	JoinedAt  time.Time
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

func (s *Session) JoinRoom(roomID, username string) {
	s.RoomID = roomID
	s.Username = username
	s.JoinedAt = time.Now()
}

func (s *Session) LeaveRoom() {
	s.RoomID = ""
	s.JoinedAt = time.Time{}
}

func (s *Session) IsInRoom() bool {
	return s.RoomID != ""
}
