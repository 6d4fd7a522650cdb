// Package identity supplies the current owner and reports when it changes.
package identity

import (
	"context"
	"sync"
)

// Provider is the source of the authenticated owner.
type Provider interface {
	// Current returns the owner, or "" when nobody is signed in.
	Current() string
	// Watch delivers the current owner, then every change. The channel closes
	// when ctx is done.
	Watch(ctx context.Context) <-chan string
}

// Variable is a Provider whose owner is set explicitly.
type Variable struct {
	mu    sync.Mutex
	owner string
	subs  map[chan string]struct{}
}

// NewVariable returns a Variable holding owner.
func NewVariable(owner string) *Variable {
	return &Variable{owner: owner, subs: make(map[chan string]struct{})}
}

func (v *Variable) Current() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.owner
}

// Set changes the owner and notifies watchers. Setting the same owner again
// is not a change.
func (v *Variable) Set(owner string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if owner == v.owner {
		return
	}
	v.owner = owner
	for ch := range v.subs {
		// Each subscriber keeps only the newest owner.
		select {
		case <-ch:
		default:
		}
		ch <- owner
	}
}

func (v *Variable) Watch(ctx context.Context) <-chan string {
	ch := make(chan string, 1)
	v.mu.Lock()
	ch <- v.owner
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			v.mu.Lock()
			delete(v.subs, ch)
			v.mu.Unlock()
		}()
		for {
			var owner string
			select {
			case <-ctx.Done():
				return
			case owner = <-ch:
			}
			select {
			case <-ctx.Done():
				return
			case out <- owner:
			}
		}
	}()
	return out
}
