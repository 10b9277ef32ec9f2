// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/rustpress-net/flowstudio/pkg/registry"
)

// NewRegistry creates the node type registry with the built-in palette
// registered.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)

	if err := reg.RegisterDefaults(); err != nil {
		panic(fmt.Errorf("failed to register node types: %w", err))
	}

	return reg
}
