// Package tools holds the capabilities the Voice Live assistant may call
// during a conversation, and the per-session registry that dispatches them.
package tools

import (
	"context"
	"fmt"

	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"go.uber.org/zap"
)

// Tool is one callable capability: given structured arguments, produce a
// structured result, possibly failing.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON schema for the tool arguments.
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry maps a tool name to its implementation. One Registry belongs to
// exactly one session so tool state never leaks across calls; registration
// happens before streaming starts and is not synchronized.
type Registry struct {
	logger shared.LoggerAdapter
	tools  map[string]Tool
	order  []string
}

func NewRegistry(logger shared.LoggerAdapter) *Registry {
	return &Registry{
		logger: logger,
		tools:  make(map[string]Tool),
	}
}

// Register adds a tool. A name collision replaces the earlier registration.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
	r.logger.Info("registered tool", zap.String("tool", t.Name()))
}

func (r *Registry) Unregister(name string) {
	if _, exists := r.tools[name]; !exists {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Info("unregistered tool", zap.String("tool", name))
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the registered tools in registration order.
func (r *Registry) All() []Tool {
	all := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.tools[name])
	}
	return all
}

// FunctionDefinitions renders every tool in the Voice Live function format.
func (r *Registry) FunctionDefinitions() []map[string]any {
	defs := make([]map[string]any, 0, len(r.order))
	for _, t := range r.All() {
		defs = append(defs, map[string]any{
			"type":        "function",
			"name":        t.Name(),
			"description": t.Description(),
			"parameters":  t.Parameters(),
		})
	}
	return defs
}

// Execute dispatches by name. Unknown names fail with shared.ErrToolNotFound.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrToolNotFound, name)
	}
	r.logger.Info("executing tool", zap.String("tool", name), zap.Any("arguments", args))
	result, err := t.Execute(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("executing tool %s: %w", name, err)
	}
	r.logger.Debug("tool execution result", zap.String("tool", name), zap.Any("result", result))
	return result, nil
}

// stringArg reads an optional string argument, tolerating a missing key or a
// non-string value.
func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
