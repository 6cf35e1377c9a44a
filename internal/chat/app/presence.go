package app

import (
	"sort"
	"sync"
	"time"

	"focushub/internal/chat/domain"
	"focushub/pkg/logger"
	"focushub/pkg/metrics"

	"go.uber.org/zap"
)

// PresenceNotifier receives online/offline transitions, in order
type PresenceNotifier interface {
	PublishTransition(t domain.PresenceTransition) error
}

// PresenceTracker live map user -> connections. A user is present iff it has
// at least one connection; transitions are emitted while the lock is held so
// online/offline for one user are never reordered.
type PresenceTracker struct {
	mu    sync.Mutex
	users map[string]map[string]Connection

	notifier    PresenceNotifier
	transitions chan domain.PresenceTransition
	metrics     *metrics.Metrics
	now         func() time.Time
}

// PresenceOption configures a PresenceTracker
type PresenceOption func(*PresenceTracker)

// WithPresenceNotifier relay transitions, e.g. over redis
func WithPresenceNotifier(n PresenceNotifier) PresenceOption {
	return func(p *PresenceTracker) { p.notifier = n }
}

// WithPresenceMetrics keep the online users gauge current
func WithPresenceMetrics(m *metrics.Metrics) PresenceOption {
	return func(p *PresenceTracker) { p.metrics = m }
}

// NewPresenceTracker create the tracker, one per process
func NewPresenceTracker(opts ...PresenceOption) *PresenceTracker {
	p := &PresenceTracker{
		users: make(map[string]map[string]Connection),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier != nil {
		p.transitions = make(chan domain.PresenceTransition, 256)
		go p.relay()
	}
	return p
}

func (p *PresenceTracker) relay() {
	for t := range p.transitions {
		if err := p.notifier.PublishTransition(t); err != nil {
			logger.Log.Warn("presence relay failed", zap.String("userID", t.UserID), zap.Error(err))
		}
	}
}

// Close stops the relay goroutine
func (p *PresenceTracker) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.transitions != nil {
		close(p.transitions)
		p.transitions = nil
	}
}

// Register adds conn. On the user's first connection an online transition is
// broadcast to everyone; the new connection always gets the online snapshot.
func (p *PresenceTracker) Register(conn Connection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID := conn.UserID()
	set, ok := p.users[userID]
	first := !ok
	if first {
		set = make(map[string]Connection)
		p.users[userID] = set
	}
	set[conn.ID()] = conn

	if first {
		p.transitionLocked(userID, domain.StatusOnline)
	}

	_ = conn.Send(domain.Push(domain.EventInitialOnlineUsers, p.onlineLocked()))
	return first
}

// Deregister removes conn; idempotent. When the user's last connection goes the
// entry is deleted and offline is broadcast to the remaining connections.
func (p *PresenceTracker) Deregister(conn Connection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID := conn.UserID()
	set, ok := p.users[userID]
	if !ok {
		return false
	}
	if _, ok := set[conn.ID()]; !ok {
		return false
	}
	delete(set, conn.ID())

	if len(set) > 0 {
		return false
	}
	delete(p.users, userID)
	p.transitionLocked(userID, domain.StatusOffline)
	return true
}

func (p *PresenceTracker) transitionLocked(userID string, status domain.PresenceStatus) {
	t := domain.PresenceTransition{UserID: userID, Status: status, At: p.now().UTC()}
	p.broadcastLocked(domain.Push(domain.EventUserStatusUpdate, t))

	if p.metrics != nil {
		p.metrics.PresenceOnlineUsers.Set(float64(len(p.users)))
	}

	if p.transitions != nil {
		select {
		case p.transitions <- t:
		default:
			logger.Log.Warn("presence relay queue full", zap.String("userID", userID))
		}
	}
	logger.Log.Debug("presence transition", zap.String("userID", userID), zap.String("status", string(status)))
}

// IsOnline true iff the user has at least one connection
func (p *PresenceTracker) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[userID]
	return ok
}

// ConnectionsFor copy of the user's connections, empty when offline
func (p *PresenceTracker) ConnectionsFor(userID string) []Connection {
	p.mu.Lock()
	defer p.mu.Unlock()

	set := p.users[userID]
	conns := make([]Connection, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// OnlineUsers sorted ids of online users
func (p *PresenceTracker) OnlineUsers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onlineLocked()
}

func (p *PresenceTracker) onlineLocked() []string {
	ids := make([]string, 0, len(p.users))
	for id := range p.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Broadcast send resp to every live connection
func (p *PresenceTracker) Broadcast(resp domain.WSResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcastLocked(resp)
}

func (p *PresenceTracker) broadcastLocked(resp domain.WSResponse) {
	for _, set := range p.users {
		for _, c := range set {
			_ = c.Send(resp)
		}
	}
}
