package state

import (
	"sync"

	"github.com/aretw0/disconnected/pkg/domain"
)

// AmbientStore holds the requested soundscape.
type AmbientStore struct {
	mu    sync.RWMutex
	mood  domain.Mood
	muted bool
}

func NewAmbientStore() *AmbientStore {
	return &AmbientStore{mood: domain.MoodNone}
}

func (a *AmbientStore) Mood() domain.Mood {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mood
}

func (a *AmbientStore) SetMood(m domain.Mood) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mood = m
}

func (a *AmbientStore) Muted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.muted
}

func (a *AmbientStore) SetMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = muted
}
