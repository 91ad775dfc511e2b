package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"bookchat/internal/chat"
)

// SessionStore keeps one Conversation per session id and expires idle ones.
type SessionStore struct {
	cache   *cache.Cache
	machine *chat.Machine
}

// NewSessionStore creates a store whose entries expire after ttl without use.
func NewSessionStore(machine *chat.Machine, ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache:   cache.New(ttl, ttl/2),
		machine: machine,
	}
}

// Get returns the conversation for id and refreshes its expiry.
func (s *SessionStore) Get(id string) (*chat.Conversation, bool) {
	if id == "" {
		return nil, false
	}
	x, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	conv := x.(*chat.Conversation)
	s.cache.Set(id, conv, cache.DefaultExpiration)
	return conv, true
}

// Create starts a new conversation under a fresh id.
func (s *SessionStore) Create() (string, *chat.Conversation) {
	id := uuid.NewString()
	conv := chat.NewConversation(s.machine)
	s.cache.Set(id, conv, cache.DefaultExpiration)
	return id, conv
}

// Delete drops a conversation.
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live conversations, expired ones included until the next sweep.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
