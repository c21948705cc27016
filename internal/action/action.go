// Package action provides configurable callbacks: no callback, a direct
// function, or the name of a registered action. Named callbacks are resolved
// once, when the viewer is configured.
package action

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownAction is returned when a named callback has no registered action.
var ErrUnknownAction = errors.New("unknown action")

// Kind tells which variant a Callback holds.
type Kind int

const (
	KindNone Kind = iota
	KindFunc
	KindNamed
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFunc:
		return "func"
	case KindNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Handler is a resolved callback.
type Handler[T any] func(T)

// Callback is an unresolved callback taking an event of type T.
type Callback[T any] struct {
	kind Kind
	fn   Handler[T]
	name string
}

// None returns a callback that does nothing.
func None[T any]() Callback[T] {
	return Callback[T]{}
}

// Func returns a callback calling fn directly. A nil fn is None.
func Func[T any](fn func(T)) Callback[T] {
	if fn == nil {
		return None[T]()
	}
	return Callback[T]{kind: KindFunc, fn: Handler[T](fn)}
}

// Named returns a callback referring to a registered action. An empty name
// is None.
func Named[T any](name string) Callback[T] {
	name = strings.TrimSpace(name)
	if name == "" {
		return None[T]()
	}
	return Callback[T]{kind: KindNamed, name: name}
}

// Kind returns the variant held by c.
func (c Callback[T]) Kind() Kind { return c.kind }

// Name returns the action name of a named callback.
func (c Callback[T]) Name() string { return c.name }

// Resolve turns c into a Handler. The returned handler is never nil; None
// resolves to a no-op.
func (c Callback[T]) Resolve(reg *Registry[T]) (Handler[T], error) {
	switch c.kind {
	case KindFunc:
		return c.fn, nil
	case KindNamed:
		if reg != nil {
			if h, ok := reg.actions[c.name]; ok {
				return h, nil
			}
		}
		return nil, &Error{Name: c.name, Known: reg.Names(), Err: ErrUnknownAction}
	default:
		return func(T) {}, nil
	}
}

// Error reports a named callback that could not be resolved.
type Error struct {
	Name  string
	Known []string
	Err   error
}

func (e *Error) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("action %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("action %q: %v (known: %s)", e.Name, e.Err, strings.Join(e.Known, ", "))
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Registry maps action names to handlers.
type Registry[T any] struct {
	actions map[string]Handler[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{actions: make(map[string]Handler[T])}
}

// Register adds or replaces the action name.
func (r *Registry[T]) Register(name string, h func(T)) {
	r.actions[name] = Handler[T](h)
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.actions))
	for n := range r.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
