package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixReview)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixBook, PrefixReview} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			// nanoid default length is 21.
			assert.Len(t, id, len(prefix)+1+21)
			assert.True(t, HasPrefix(id, prefix))
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixBook)
		assert.True(t, HasPrefix(id, PrefixBook))
	})
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("book-abc", PrefixBook))
	assert.False(t, HasPrefix("book-", PrefixBook))
	assert.False(t, HasPrefix("review-abc", PrefixBook))
	assert.False(t, HasPrefix("bookabc", PrefixBook))
}
