package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budu/mu-action/pkg/action"
)

const testActionsYAML = `
actions:
  - name: greet
    description: Greets someone by name
    props:
      - name: name
        type: string
        positional: true
      - name: punctuation
        type: string
        default: "!"
    body: |
      "Hello " + props.name + props.punctuation
`

func writeTestActions(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "actions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testActionsYAML), 0644))
	return path
}

func TestLoadInvoker(t *testing.T) {
	iv, err := loadInvoker(writeTestActions(t))
	require.NoError(t, err)
	assert.Equal(t, 1, iv.Catalog().Count())
	assert.True(t, iv.Catalog().Has("greet"))
}

func TestLoadInvokerNonExistentFile(t *testing.T) {
	_, err := loadInvoker("nonexistent.yaml")
	assert.Error(t, err)
}

func TestLoadInvokerInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content"), 0644))

	_, err := loadInvoker(path)
	assert.Error(t, err)
}

func TestParseArgValue(t *testing.T) {
	assert.Equal(t, 8, parseArgValue("8"))
	assert.Equal(t, 1.5, parseArgValue("1.5"))
	assert.Equal(t, true, parseArgValue("true"))
	assert.Equal(t, "hello", parseArgValue("hello"))
	assert.Equal(t, "", parseArgValue(""))
}

func TestCollectArgs(t *testing.T) {
	iv, err := loadInvoker(writeTestActions(t))
	require.NoError(t, err)
	a, err := iv.Catalog().Get("greet")
	require.NoError(t, err)

	t.Run("named args", func(t *testing.T) {
		runArgs = []string{"name=Alice", "punctuation=?"}
		runArgsJSON = ""
		defer func() { runArgs = nil }()

		args, err := collectArgs(a, nil)
		require.NoError(t, err)
		assert.Equal(t, "Alice", args["name"])
		assert.Equal(t, "?", args["punctuation"])
	})

	t.Run("positional values", func(t *testing.T) {
		runArgs = nil
		runArgsJSON = ""

		args, err := collectArgs(a, []string{"Bob"})
		require.NoError(t, err)
		assert.Equal(t, "Bob", args["name"])
	})

	t.Run("json overridden by named", func(t *testing.T) {
		runArgs = []string{"name=Carol"}
		runArgsJSON = `{"name": "Dave", "punctuation": "."}`
		defer func() { runArgs = nil; runArgsJSON = "" }()

		args, err := collectArgs(a, nil)
		require.NoError(t, err)
		assert.Equal(t, "Carol", args["name"])
		assert.Equal(t, ".", args["punctuation"])
	})

	t.Run("malformed pair", func(t *testing.T) {
		runArgs = []string{"no-equals-sign"}
		defer func() { runArgs = nil }()

		_, err := collectArgs(a, nil)
		assert.Error(t, err)
	})

	t.Run("too many positional values", func(t *testing.T) {
		runArgs = nil
		runArgsJSON = ""

		_, err := collectArgs(a, []string{"a", "b"})
		assert.Error(t, err)
	})
}

func TestExtractValue(t *testing.T) {
	value := map[string]any{
		"items": []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
		},
	}

	t.Run("single match", func(t *testing.T) {
		got, err := extractValue(value, "$.items[0].id")
		require.NoError(t, err)
		assert.Equal(t, "a", got)
	})

	t.Run("multiple matches", func(t *testing.T) {
		got, err := extractValue(value, "$.items[*].id")
		require.NoError(t, err)
		assert.ElementsMatch(t, []any{"a", "b"}, got)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := extractValue(value, "$.missing")
		assert.Error(t, err)
	})

	t.Run("invalid expression", func(t *testing.T) {
		_, err := extractValue(value, "$[")
		assert.Error(t, err)
	})
}

func TestWriteInvocationJSON(t *testing.T) {
	iv, err := loadInvoker(writeTestActions(t))
	require.NoError(t, err)
	inv, err := iv.Invoke("greet", map[string]any{"name": "Frank"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeInvocationJSON(path, inv))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "Hello Frank!", out["value"])
	assert.Equal(t, inv.ID, out["invocation_id"])
}

func TestRunCommandEndToEnd(t *testing.T) {
	path := writeTestActions(t)

	iv, err := loadInvoker(path)
	require.NoError(t, err)

	inv, err := iv.Invoke("greet", map[string]any{"name": "Eve"})
	require.NoError(t, err)
	assert.True(t, inv.Outcome.OK)
	assert.Equal(t, "Hello Eve!", inv.Outcome.Value)
	assert.Equal(t, "greet", inv.Outcome.Meta[action.MetaAction])
	assert.NotEmpty(t, inv.ID)
}
