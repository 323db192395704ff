package scoreholder

import (
	"sort"
	"sync"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
)

// Constructor builds a custom holder for a score definition.
type Constructor func(def *score.Definition, constraintMatchEnabled bool) (Holder, error)

// Registry maps names to custom holder constructors. Embedding programs
// populate it at startup; sessions look names up when they are configured
// with a custom score holder. It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under name. Names are unique.
func (r *Registry) Register(name string, c Constructor) error {
	if name == "" || c == nil {
		return scoreerr.InvalidArgument("custom score holder needs a name and a constructor")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.constructors[name]; dup {
		return scoreerr.InvalidArgument("custom score holder (%s) is already registered", name)
	}
	r.constructors[name] = c
	return nil
}

// Lookup returns the constructor registered under name.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.constructors[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns the holder for def. A non-empty customName selects a
// constructor from registry instead of the built-in holder; a missing name is
// an unsupported-operation error and a failing constructor is reported as an
// invalid-state error wrapping its cause.
func New(def *score.Definition, constraintMatchEnabled bool, registry *Registry, customName string) (Holder, error) {
	if customName != "" {
		var c Constructor
		ok := false
		if registry != nil {
			c, ok = registry.Lookup(customName)
		}
		if !ok {
			return nil, scoreerr.Unsupported("custom score holder (%s) is not registered for score type %s", customName, def)
		}
		h, err := c(def, constraintMatchEnabled)
		if err != nil {
			return nil, scoreerr.Wrap(scoreerr.ErrInvalidState, err, "custom score holder (%s) could not be created", customName)
		}
		return h, nil
	}
	switch def.Type() {
	case score.TypeSimple:
		return built(NewSimpleHolder[int](def, constraintMatchEnabled))
	case score.TypeSimpleLong:
		return built(NewSimpleHolder[int64](def, constraintMatchEnabled))
	case score.TypeSimpleDecimal:
		return built(NewSimpleDecimalHolder(def, constraintMatchEnabled))
	case score.TypeHardSoft:
		return built(NewHardSoftHolder[int](def, constraintMatchEnabled))
	case score.TypeHardSoftLong:
		return built(NewHardSoftHolder[int64](def, constraintMatchEnabled))
	case score.TypeHardSoftDecimal:
		return built(NewHardSoftDecimalHolder(def, constraintMatchEnabled))
	case score.TypeHardMediumSoft:
		return built(NewHardMediumSoftHolder[int](def, constraintMatchEnabled))
	case score.TypeHardMediumSoftLong:
		return built(NewHardMediumSoftHolder[int64](def, constraintMatchEnabled))
	case score.TypeHardMediumSoftDecimal:
		return built(NewHardMediumSoftDecimalHolder(def, constraintMatchEnabled))
	case score.TypeBendable:
		return built(NewBendableHolder[int](def, constraintMatchEnabled))
	case score.TypeBendableLong:
		return built(NewBendableHolder[int64](def, constraintMatchEnabled))
	case score.TypeBendableDecimal:
		return built(NewBendableDecimalHolder(def, constraintMatchEnabled))
	default:
		return nil, scoreerr.Unsupported("no built-in score holder for score type %s; register a custom score holder", def)
	}
}

func built[H Holder](h H, err error) (Holder, error) {
	if err != nil {
		return nil, err
	}
	return h, nil
}
