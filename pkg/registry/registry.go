package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

var (
	ErrTypeNotRegistered     = errors.New("node type not registered")
	ErrTypeAlreadyRegistered = errors.New("node type already registered")
	ErrInvalidDefinition     = errors.New("invalid node type definition")
	ErrInvalidConfig         = errors.New("invalid node configuration")
)

// Registry is the closed catalog of node types. Definitions are registered
// at startup and listed in registration order for the palette.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	defs  map[string]NodeTypeDefinition
	order []string
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With("module", "registry"),
		defs:   make(map[string]NodeTypeDefinition),
	}
}

// Register adds a node type definition to the catalog. Duplicate type tags,
// unknown categories, and port name collisions are rejected.
func (r *Registry) Register(def NodeTypeDefinition) error {
	if def.Type == "" || def.Label == "" {
		return fmt.Errorf("%w: type and label are required", ErrInvalidDefinition)
	}

	if !def.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q for type %q", ErrInvalidDefinition, def.Category, def.Type)
	}

	if err := checkPortNames(def.Inputs); err != nil {
		return fmt.Errorf("%w: type %q inputs: %w", ErrInvalidDefinition, def.Type, err)
	}

	if err := checkPortNames(def.Outputs); err != nil {
		return fmt.Errorf("%w: type %q outputs: %w", ErrInvalidDefinition, def.Type, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("%w: %q", ErrTypeAlreadyRegistered, def.Type)
	}

	r.defs[def.Type] = def
	r.order = append(r.order, def.Type)

	r.logger.Debug("Registered node type", "type", def.Type, "category", def.Category)

	return nil
}

// Lookup returns the definition for a type tag.
func (r *Registry) Lookup(nodeType string) (NodeTypeDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[nodeType]
	if !ok {
		return NodeTypeDefinition{}, fmt.Errorf("%w: %q", ErrTypeNotRegistered, nodeType)
	}

	return def, nil
}

// Definitions returns every registered definition in registration order.
func (r *Registry) Definitions() []NodeTypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]NodeTypeDefinition, 0, len(r.order))
	for _, nodeType := range r.order {
		defs = append(defs, r.defs[nodeType])
	}

	return defs
}

// ByCategory returns the registered definitions in one palette category,
// keeping registration order.
func (r *Registry) ByCategory(category models.NodeCategory) []NodeTypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var defs []NodeTypeDefinition

	for _, nodeType := range r.order {
		if r.defs[nodeType].Category == category {
			defs = append(defs, r.defs[nodeType])
		}
	}

	return defs
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.defs)
}

// HealthCheck reports whether the catalog is usable.
func (r *Registry) HealthCheck() error {
	if r.Len() == 0 {
		return errors.New("node type catalog is empty")
	}

	return nil
}

func checkPortNames(specs []PortSpec) error {
	seen := make(map[string]bool, len(specs))

	for _, spec := range specs {
		if spec.Name == "" {
			return errors.New("port name is required")
		}

		if seen[spec.Name] {
			return fmt.Errorf("duplicate port name %q", spec.Name)
		}

		seen[spec.Name] = true
	}

	return nil
}
