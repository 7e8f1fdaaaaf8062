package diff

import (
	"context"
	"fmt"
)

// TextSource produces raw unified diff output for a repository root.
type TextSource interface {
	DiffText(ctx context.Context, root string) (string, error)
}

// Extract reads the working tree diff from src and parses it.
func Extract(ctx context.Context, src TextSource, root string) (Document, error) {
	raw, err := src.DiffText(ctx, root)
	if err != nil {
		return Document{}, fmt.Errorf("extract diff: %w", err)
	}
	return Parse(raw), nil
}
