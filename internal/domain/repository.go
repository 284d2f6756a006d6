package domain

type Session struct {
	Token string
}

func (s Session) LoggedIn() bool {
	return s.Token != ""
}

type SessionRepository interface {
	// Load re-reads the backing store. A missing or unreadable store is
	// an empty session, never an error.
	Load() Session

	Current() Session

	Save(session Session) error

	Clear() error
}
