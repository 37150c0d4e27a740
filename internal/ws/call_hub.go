package ws

import (
	"errors"
	"sync"
)

var ErrCallActive = errors.New("call session already active")

// CallSession tracks one live billed call: the paying user and the minutes
// settled so far. The billing loop in the handler advances MinutesBilled
// after each successful settlement.
type CallSession struct {
	CallID         string
	UserID         uint
	PricePerMinute int64

	mu            sync.Mutex
	minutesBilled int64
}

// NextMinute returns the 1-based index of the next minute to settle.
func (s *CallSession) NextMinute() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minutesBilled + 1
}

// MarkBilled records one more settled minute.
func (s *CallSession) MarkBilled() {
	s.mu.Lock()
	s.minutesBilled++
	s.mu.Unlock()
}

// MinutesBilled reports how many minutes have been settled.
func (s *CallSession) MinutesBilled() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minutesBilled
}

// CallHub tracks live call sessions. One session per call id: a reconnect
// must first leave the old session, otherwise the same call would be billed
// by two loops.
type CallHub struct {
	mu       sync.Mutex
	sessions map[string]*CallSession
}

func NewCallHub() *CallHub {
	return &CallHub{sessions: make(map[string]*CallSession)}
}

func (h *CallHub) Join(callID string, userID uint, pricePerMinute int64) (*CallSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[callID]; ok {
		return nil, ErrCallActive
	}
	s := &CallSession{CallID: callID, UserID: userID, PricePerMinute: pricePerMinute}
	h.sessions[callID] = s
	return s, nil
}

func (h *CallHub) Leave(callID string) {
	h.mu.Lock()
	delete(h.sessions, callID)
	h.mu.Unlock()
}

func (h *CallHub) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
