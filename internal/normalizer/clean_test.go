package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	t.Run("strips undefined, keeps nil", func(t *testing.T) {
		doc := map[string]any{
			"name":    "Falcons CC",
			"captain": nil,
			"ground":  Undefined,
		}
		got := Clean(doc)
		assert.Equal(t, map[string]any{"name": "Falcons CC", "captain": nil}, got)
	})

	t.Run("recurses into maps and slices", func(t *testing.T) {
		doc := map[string]any{
			"team": map[string]any{
				"name":      "Eagles",
				"shortName": Undefined,
			},
			"players": []any{
				map[string]any{"name": "A Kumar", "role": Undefined},
				Undefined,
				nil,
			},
		}
		got := Clean(doc)
		assert.Equal(t, map[string]any{
			"team": map[string]any{"name": "Eagles"},
			"players": []any{
				map[string]any{"name": "A Kumar"},
				nil,
			},
		}, got)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		doc := map[string]any{"keep": 1, "drop": Undefined}
		Clean(doc)
		assert.Contains(t, doc, "drop")
	})

	t.Run("empty document", func(t *testing.T) {
		assert.Equal(t, map[string]any{}, Clean(map[string]any{}))
	})
}
