package chat

import (
	"context"
	"sync"

	"bookchat/internal/domain"
)

// Conversation is one user's session bound to a Machine. Turns of the same
// conversation are serialized; different conversations never share state.
type Conversation struct {
	mu      sync.Mutex
	machine *Machine
	session Session
}

// NewConversation starts a conversation at the first step.
func NewConversation(m *Machine) *Conversation {
	return &Conversation{machine: m, session: NewSession()}
}

// Handle applies one user message.
func (c *Conversation) Handle(ctx context.Context, msg string) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, reply := c.machine.Transition(ctx, c.session, msg)
	c.session = next
	return reply
}

// Reset restarts the conversation and returns the greeting.
func (c *Conversation) Reset() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Reset()
	return Greeting
}

// Snapshot returns a copy of the current session.
func (c *Conversation) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	s.Candidates = append([]domain.CandidateEntry(nil), s.Candidates...)
	return s
}
