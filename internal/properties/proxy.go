package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Proxy is a read-only view over the property store for one document or
// corpus. It never writes.
type Proxy struct {
	ns    Namespace
	id    uint
	store Store
}

func NewProxy(ns Namespace, id uint, store Store) *Proxy {
	return &Proxy{ns: ns, id: id, store: store}
}

func (p *Proxy) ID() uint {
	return p.id
}

func (p *Proxy) Get(ctx context.Context, key string) (json.RawMessage, error) {
	raw, err := p.store.Get(ctx, p.ns.Key(p.id, key))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, &NotFoundError{Kind: p.ns.kind(), ID: p.id, Key: key}
		}
		return nil, fmt.Errorf("read property %q failed: %w", key, err)
	}
	return raw, nil
}

// Decode reads key and unmarshals it into v.
func (p *Proxy) Decode(ctx context.Context, key string, v any) error {
	raw, err := p.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode property %q failed: %w", key, err)
	}
	return nil
}

// Keys returns the names of the properties produced so far.
func (p *Proxy) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := p.Decode(ctx, PropertiesKey, &keys); err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Has reports whether key can be read. A missing key is not an error.
func (p *Proxy) Has(ctx context.Context, key string) (bool, error) {
	_, err := p.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Set always fails with ErrReadOnly.
func (p *Proxy) Set(context.Context, string, any) error {
	return ErrReadOnly
}
