package testutil

import (
	"context"
	"sync"
)

// FakeStore is an in-memory remote configuration store satisfying the
// syncer.Store contract. Thread-safe; no external server required.
type FakeStore struct {
	mu        sync.Mutex
	documents map[string]string
	listeners map[string][]func(content string)

	// Error injection
	FetchErr     error
	PublishErr   error
	SubscribeErr error

	// Call counts for verification
	FetchCalls     int
	PublishCalls   int
	SubscribeCalls int
}

// NewFakeStore creates an empty in-memory store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		documents: make(map[string]string),
		listeners: make(map[string][]func(content string)),
	}
}

func storeKey(dataID, group string) string {
	return group + "." + dataID
}

// Fetch returns the stored document, or an empty string when none exists.
func (f *FakeStore) Fetch(_ context.Context, dataID, group string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.FetchCalls++
	if f.FetchErr != nil {
		return "", f.FetchErr
	}
	return f.documents[storeKey(dataID, group)], nil
}

// Publish stores the document without notifying listeners, mirroring a store
// where the publisher does not hear its own change back synchronously. Use
// Push to deliver notifications.
func (f *FakeStore) Publish(_ context.Context, dataID, group, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PublishCalls++
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.documents[storeKey(dataID, group)] = content
	return nil
}

// Subscribe registers onChange for the (dataID, group) pair.
func (f *FakeStore) Subscribe(_ context.Context, dataID, group string, onChange func(content string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SubscribeCalls++
	if f.SubscribeErr != nil {
		return f.SubscribeErr
	}
	key := storeKey(dataID, group)
	f.listeners[key] = append(f.listeners[key], onChange)
	return nil
}

// Push stores content and delivers it synchronously to every registered
// listener, simulating a remote change notification.
func (f *FakeStore) Push(dataID, group, content string) {
	f.mu.Lock()
	key := storeKey(dataID, group)
	f.documents[key] = content
	listeners := make([]func(string), len(f.listeners[key]))
	copy(listeners, f.listeners[key])
	f.mu.Unlock()

	for _, l := range listeners {
		l(content)
	}
}

// Document returns the currently stored document for the pair.
func (f *FakeStore) Document(dataID, group string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.documents[storeKey(dataID, group)]
}

// ListenerCount reports how many listeners are registered for the pair.
func (f *FakeStore) ListenerCount(dataID, group string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[storeKey(dataID, group)])
}
