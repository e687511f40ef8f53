package service

import (
	"context"

	"github.com/fast-gateway-protocol/github/internal/schema"
)

// Example is a runnable sample invocation published with a method. Every
// example's params must validate against the method's schema; the catalog
// enforces this at startup.
type Example struct {
	Description string         `json:"description,omitempty"`
	Params      map[string]any `json:"params"`
}

// Method describes one dispatchable operation: its name, parameter and
// result shapes, the error codes it can produce, and sample invocations.
// The descriptor is served verbatim to discovery callers.
type Method struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Params      *schema.Schema `json:"params"`
	Returns     *schema.Schema `json:"returns,omitempty"`
	Errors      []Code         `json:"errors,omitempty"`
	Examples    []Example      `json:"examples,omitempty"`

	handler handlerFunc
}

type handlerFunc func(ctx context.Context, s *Service, params map[string]any) (any, error)
