package gateway

// Session is the mutable protocol state of one gateway client. It does
// no locking: the event loop is its only user.
type Session struct {
	sequence         *uint64
	sessionID        string
	resumeGatewayURL string
	identified       bool
	reconnecting     bool
}

func NewSession() *Session {
	return &Session{}
}

// RecordSequence keeps the highest sequence number seen.
func (s *Session) RecordSequence(n uint64) {
	if s.sequence != nil && n <= *s.sequence {
		return
	}
	s.sequence = &n
}

// CurrentSequence returns a copy of the last sequence number, nil until
// the first dispatch of the session.
func (s *Session) CurrentSequence() *uint64 {
	if s.sequence == nil {
		return nil
	}
	n := *s.sequence
	return &n
}

func (s *Session) SetSession(id, resumeGatewayURL string) {
	s.sessionID = id
	s.resumeGatewayURL = resumeGatewayURL
}

func (s *Session) SessionID() string {
	return s.sessionID
}

func (s *Session) ResumeGatewayURL() string {
	return s.resumeGatewayURL
}

// ClearSession forgets everything tied to the gateway session, the
// next connection has to identify from scratch.
func (s *Session) ClearSession() {
	s.sequence = nil
	s.sessionID = ""
	s.resumeGatewayURL = ""
	s.identified = false
}

func (s *Session) CanResume() bool {
	return s.sessionID != "" && s.sequence != nil
}

func (s *Session) MarkIdentified() {
	s.identified = true
}

func (s *Session) ResetIdentified() {
	s.identified = false
}

func (s *Session) IsIdentified() bool {
	return s.identified
}

func (s *Session) SetReconnecting(v bool) {
	s.reconnecting = v
}

func (s *Session) IsReconnecting() bool {
	return s.reconnecting
}
