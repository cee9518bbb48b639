package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a document lock.
const DefaultLockTTL = 30 * time.Second

// docLock serializes access to one document inside this process. holders
// counts goroutines using or waiting on it; the entry is dropped at zero.
type docLock struct {
	sync.Mutex
	holders int
}

// Manager serializes access to stored documents. Every operation on an id
// runs under that id's local lock and, when configured, a distributed lock.
type Manager struct {
	store ports.DocumentStore

	guard    sync.Mutex
	docLocks map[string]*docLock

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker adds a distributed lock around every operation, for replicas
// sharing one store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger sets the logger used for lock release failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Manager over the given document store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		docLocks: make(map[string]*docLock),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) hold(id string) *docLock {
	m.guard.Lock()
	defer m.guard.Unlock()

	l, ok := m.docLocks[id]
	if !ok {
		l = &docLock{}
		m.docLocks[id] = l
	}
	l.holders++
	return l
}

func (m *Manager) drop(id string, l *docLock) {
	m.guard.Lock()
	defer m.guard.Unlock()

	l.holders--
	if l.holders == 0 {
		delete(m.docLocks, id)
	}
}

// Open retrieves a stored document.
func (m *Manager) Open(ctx context.Context, id string) (*document.Document, error) {
	var doc *document.Document
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, id)
		return err
	})
	return doc, err
}

// OpenOrCreate loads a document, storing an empty one first if id is unknown.
func (m *Manager) OpenOrCreate(ctx context.Context, id string) (*document.Document, error) {
	var doc *document.Document
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return fmt.Errorf("failed to check document existence: %w", err)
		}

		doc = document.New()
		if err := m.store.Save(ctx, id, doc); err != nil {
			return fmt.Errorf("failed to initialize document: %w", err)
		}
		return nil
	})
	return doc, err
}

// Update loads a document, applies fn and saves the result under one lock.
func (m *Manager) Update(ctx context.Context, id string, fn func(*document.Document) error) (*document.Document, error) {
	var doc *document.Document
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return m.store.Save(ctx, id, doc)
	})
	return doc, err
}

// Save persists the document.
func (m *Manager) Save(ctx context.Context, id string, doc *document.Document) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, doc)
	})
}

// Delete removes the document from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List returns the stored document ids. It takes no lock.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock runs fn while holding the document's lock.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	l := m.hold(id)
	l.Lock()
	defer func() {
		l.Unlock()
		m.drop(id, l)
	}()

	if m.locker == nil {
		return fn(ctx)
	}

	unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
	if err != nil {
		return fmt.Errorf("lock document %q: %w", id, err)
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			m.logger.Warn("document lock not released, it expires with its ttl", "document", id, "err", err)
		}
	}()
	return fn(ctx)
}
