// Package events provides a typed publish/subscribe channel.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Token identifies one subscription. The zero Token is never issued.
type Token uuid.UUID

// String returns the token in canonical uuid form.
func (t Token) String() string {
	return uuid.UUID(t).String()
}

// Handler receives published events.
type Handler[T any] func(T)

type subscription[T any] struct {
	token   Token
	handler Handler[T]
}

// Bus delivers every published event to all current subscribers, in
// subscription order, on the publisher's goroutine.
type Bus[T any] struct {
	mu   sync.RWMutex
	subs []subscription[T]
}

// NewBus creates an empty Bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers handler and returns the token that removes it.
func (b *Bus[T]) Subscribe(handler Handler[T]) Token {
	tok := Token(uuid.New())
	b.mu.Lock()
	b.subs = append(b.subs, subscription[T]{token: tok, handler: handler})
	b.mu.Unlock()
	return tok
}

// Unsubscribe removes the subscription. It reports whether the token was
// registered.
func (b *Bus[T]) Unsubscribe(tok Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.token == tok {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish calls every subscriber with ev. Handlers may subscribe or
// unsubscribe while being called; changes apply from the next Publish.
func (b *Bus[T]) Publish(ev T) {
	b.mu.RLock()
	subs := make([]subscription[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(ev)
	}
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
