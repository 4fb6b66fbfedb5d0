package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"
	"github.com/zkotp-io/zkotp/internal/zkp"
)

// CallRegistry maps target identifiers to their executors. It implements
// TargetCall, so a registry can be handed straight to NewRoutine.
type CallRegistry struct {
	handlers map[string]TargetCall
	fallback TargetCall
}

// NewCallRegistry creates an empty registry. Without a fallback, calls to
// unregistered targets fail and surface as ActionExecutionFailed.
func NewCallRegistry() *CallRegistry {
	return &CallRegistry{handlers: make(map[string]TargetCall)}
}

// Register binds a target identifier to its executor.
func (c *CallRegistry) Register(target string, fn TargetCall) {
	c.handlers[target] = fn
}

// SetFallback installs an executor for targets with no dedicated handler.
func (c *CallRegistry) SetFallback(fn TargetCall) {
	c.fallback = fn
}

// Targets lists the registered target identifiers in stable order.
func (c *CallRegistry) Targets() []string {
	targets := lo.Keys(c.handlers)
	sort.Strings(targets)
	return targets
}

// Call dispatches the action to its handler.
func (c *CallRegistry) Call(ctx context.Context, action zkp.Action) error {
	if fn, ok := c.handlers[action.Target]; ok {
		return fn(ctx, action)
	}
	if c.fallback != nil {
		return c.fallback(ctx, action)
	}
	return fmt.Errorf("no handler registered for target %q", action.Target)
}

// LogCall is a TargetCall that records the action and succeeds. Useful as a
// fallback in deployments where execution happens downstream.
func LogCall(ctx context.Context, action zkp.Action) error {
	slog.InfoContext(ctx, "target call dispatched",
		"target", action.Target, "value", action.Value, "payload_bytes", len(action.Payload))
	return nil
}
