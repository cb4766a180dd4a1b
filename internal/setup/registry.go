package setup

import (
	"context"
	"net/url"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var ErrSchemeNotRegistered = errors.New("scheme not registered")

type Factory[T any] func(ctx context.Context, u *url.URL) (T, error)

type Registry[T any] struct {
	mutex     sync.RWMutex
	factories map[string]Factory[T]
}

func (r *Registry[T]) Register(scheme string, factory Factory[T]) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.factories[scheme] = factory
}

func (r *Registry[T]) Schemes() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	schemes := make([]string, 0, len(r.factories))
	for s := range r.factories {
		schemes = append(schemes, s)
	}

	sort.Strings(schemes)

	return schemes
}

func (r *Registry[T]) From(ctx context.Context, rawURL string) (T, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return *new(T), errors.WithStack(err)
	}

	r.mutex.RLock()
	factory, exists := r.factories[u.Scheme]
	r.mutex.RUnlock()

	if !exists {
		return *new(T), errors.Wrapf(ErrSchemeNotRegistered, "no factory associated with scheme '%s'", u.Scheme)
	}

	service, err := factory(ctx, u)
	if err != nil {
		return *new(T), errors.WithStack(err)
	}

	return service, nil
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
	}
}
