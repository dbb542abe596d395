package ai

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/models"
)

// Tool is a capability the model may call during a run. Invoke reports
// failures that the model should see as text; the error return is for
// failures the run cannot continue from.
type Tool interface {
	Name() string
	Description() string
	Parameters() models.ToolParameters
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// ToolSet is a name-keyed registry of tools offered to the model.
type ToolSet struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewToolSet(tools ...Tool) (*ToolSet, error) {
	ts := &ToolSet{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := ts.Register(t); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func (ts *ToolSet) Register(tool Tool) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	name := tool.Name()
	if _, exists := ts.tools[name]; exists {
		return domainErrors.ErrDuplicateTool.WithContext("tool", name)
	}

	ts.tools[name] = tool
	ts.order = append(ts.order, name)
	return nil
}

func (ts *ToolSet) Get(name string) (Tool, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	t, ok := ts.tools[name]
	return t, ok
}

func (ts *ToolSet) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.order)
}

// Definitions lists the registered tools in registration order.
func (ts *ToolSet) Definitions() []models.ToolDefinition {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	defs := make([]models.ToolDefinition, 0, len(ts.order))
	for _, name := range ts.order {
		t := ts.tools[name]
		defs = append(defs, models.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Invoke runs the named tool. An unknown name is answered with text so the
// model can correct itself.
func (ts *ToolSet) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := ts.Get(name)
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", name), nil
	}
	return t.Invoke(ctx, args)
}
