package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/simaogato/orbital-ledger/internal/domain"
)

// Categories returns the category set
func (e *Engine) Categories() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.state.Categories...)
}

// AddCategory adds name to the category set. Adding an existing name is a no-op.
func (e *Engine) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name cannot be empty", domain.ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.HasCategory(name) {
		return nil
	}

	next := e.state.Clone()
	next.Categories = append(next.Categories, name)
	return e.commit(ctx, next)
}

// DeleteCategory removes name from the category set.
// Transactions keep their category string; it is a free-form tag.
func (e *Engine) DeleteCategory(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.HasCategory(name) {
		return nil
	}

	next := e.state.Clone()
	next.Categories = next.Categories[:0]
	for _, c := range e.state.Categories {
		if c != name {
			next.Categories = append(next.Categories, c)
		}
	}
	return e.commit(ctx, next)
}
