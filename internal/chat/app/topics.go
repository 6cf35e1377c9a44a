package app

import (
	"sync"

	"focushub/internal/chat/domain"
)

// Topics named broadcast groups connections explicitly join
type Topics struct {
	mu      sync.RWMutex
	members map[string]map[string]Connection
	joined  map[string]map[string]struct{}
}

// NewTopics create an empty registry
func NewTopics() *Topics {
	return &Topics{
		members: make(map[string]map[string]Connection),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Join add conn to topic, joining twice is a no-op
func (t *Topics) Join(topic string, conn Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.members[topic]
	if !ok {
		set = make(map[string]Connection)
		t.members[topic] = set
	}
	set[conn.ID()] = conn

	topics, ok := t.joined[conn.ID()]
	if !ok {
		topics = make(map[string]struct{})
		t.joined[conn.ID()] = topics
	}
	topics[topic] = struct{}{}
}

// Leave remove conn from topic
func (t *Topics) Leave(topic string, conn Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaveLocked(topic, conn.ID())
}

// LeaveAll remove conn from every topic, called on disconnect
func (t *Topics) LeaveAll(conn Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for topic := range t.joined[conn.ID()] {
		t.leaveLocked(topic, conn.ID())
	}
	delete(t.joined, conn.ID())
}

func (t *Topics) leaveLocked(topic, connID string) {
	if set, ok := t.members[topic]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(t.members, topic)
		}
	}
	if topics, ok := t.joined[connID]; ok {
		delete(topics, topic)
		if len(topics) == 0 {
			delete(t.joined, connID)
		}
	}
}

// Publish send resp to every member of topic and return how many were reached
func (t *Topics) Publish(topic string, resp domain.WSResponse) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, c := range t.members[topic] {
		if c.Send(resp) == nil {
			n++
		}
	}
	return n
}

// Members current members of topic
func (t *Topics) Members(topic string) []Connection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	conns := make([]Connection, 0, len(t.members[topic]))
	for _, c := range t.members[topic] {
		conns = append(conns, c)
	}
	return conns
}
