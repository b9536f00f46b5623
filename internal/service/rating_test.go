package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingAggregator_LogsFailedRecompute(t *testing.T) {
	env := setupServices(t)
	ada := env.signup(t, "ada")
	dune := env.createBook(t, ada, "Dune")

	var buf bytes.Buffer
	ratings := NewRatingAggregator(env.store, slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, env.store.Close())

	_, err := ratings.Recompute(context.Background(), dune.ID)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"Rating recompute failed"`)
	assert.Contains(t, buf.String(), dune.ID)
}
