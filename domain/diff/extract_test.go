package diff

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	raw string
	err error
}

func (s stubSource) DiffText(context.Context, string) (string, error) { return s.raw, s.err }

func TestExtract(t *testing.T) {
	raw := "diff --git a/x.go b/x.go\n--- a/x.go\n+++ b/x.go\n@@ -1 +1 @@\n-old\n+new\n"

	doc, err := Extract(context.Background(), stubSource{raw: raw}, "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"x.go"}, doc.Paths())
}

func TestExtract_Error(t *testing.T) {
	sentinel := errors.New("boom")

	_, err := Extract(context.Background(), stubSource{err: sentinel}, "/repo")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}
