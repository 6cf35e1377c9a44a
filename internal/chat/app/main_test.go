package app

import (
	"os"
	"sync"
	"testing"

	"focushub/internal/chat/domain"
	"focushub/pkg/logger"
	"focushub/pkg/token"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	token.SetSecret("chat-test-secret")
	os.Exit(m.Run())
}

// fakeConn records every frame sent to it
type fakeConn struct {
	id     string
	userID string

	mu     sync.Mutex
	frames []domain.WSResponse
}

func newFakeConn(id, userID string) *fakeConn {
	return &fakeConn{id: id, userID: userID}
}

func (f *fakeConn) ID() string     { return f.id }
func (f *fakeConn) UserID() string { return f.userID }

func (f *fakeConn) Send(resp domain.WSResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, resp)
	return nil
}

func (f *fakeConn) received(event domain.Event) []domain.WSResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WSResponse
	for _, r := range f.frames {
		if r.Event == string(event) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeConn) count(event domain.Event) int {
	return len(f.received(event))
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

// statusUpdates transitions for userID seen by f
func (f *fakeConn) statusUpdates(userID string, status domain.PresenceStatus) int {
	n := 0
	for _, r := range f.received(domain.EventUserStatusUpdate) {
		if t, ok := r.Payload.(domain.PresenceTransition); ok && t.UserID == userID && t.Status == status {
			n++
		}
	}
	return n
}
