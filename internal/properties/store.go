package properties

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// PropertiesKey lists the property names available for an object.
const PropertiesKey = "_properties"

// Namespace prefixes raw store keys so documents and corpora never collide.
type Namespace string

const (
	DocumentNamespace Namespace = "id"
	CorpusNamespace   Namespace = "corpus_id"
)

// Key returns the raw store key, e.g. "id:12:text".
func (n Namespace) Key(id uint, key string) string {
	return fmt.Sprintf("%s:%d:%s", n, id, key)
}

func (n Namespace) kind() string {
	if n == CorpusNamespace {
		return "corpus"
	}
	return "document"
}

// Store reads JSON values by raw key. Implementations return ErrKeyNotFound
// for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
}

// Writer is implemented by stores that the pipeline adapter may seed.
type Writer interface {
	Set(ctx context.Context, key string, value any) error
}

type Opener interface {
	Open(ctx context.Context) (Store, error)
}

type OpenerFunc func(ctx context.Context) (Store, error)

func (f OpenerFunc) Open(ctx context.Context) (Store, error) {
	return f(ctx)
}

// StaticOpener always returns the same store.
func StaticOpener(s Store) Opener {
	return OpenerFunc(func(context.Context) (Store, error) { return s, nil })
}

// Lazy defers opening the underlying store until the first read and keeps
// the opened store for later reads. A failed open is retried next time.
type Lazy struct {
	opener Opener

	mu    sync.Mutex
	store Store
}

func NewLazy(opener Opener) *Lazy {
	return &Lazy{opener: opener}
}

func (l *Lazy) Get(ctx context.Context, key string) (json.RawMessage, error) {
	store, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, key)
}

// Opened reports whether the underlying store has been opened.
func (l *Lazy) Opened() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store != nil
}

func (l *Lazy) open(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		return l.store, nil
	}
	store, err := l.opener.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open property store failed: %w", err)
	}
	l.store = store
	return store, nil
}
