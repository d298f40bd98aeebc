package intelligence

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replaydeck/replaydeck/internal/analysis"
)

type fakeCompleter struct {
	requests []CompletionRequest
	respond  func(req CompletionRequest) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	return f.respond(req)
}

func clickAction(id string) analysis.Action {
	return analysis.Action{
		NodeID:      id,
		Kind:        analysis.KindClicked,
		ElementType: "BUTTON",
		Attributes:  map[string]string{"text": "Go"},
		Timestamp:   1000,
	}
}

func TestGenerateActionIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleBatch", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			return `{"action_ids":["clicked_go","clicked_go"]}`, nil
		}}

		ids, err := GenerateActionIDs(ctx, completer, []analysis.Action{clickAction("1"), clickAction("2")}, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"clicked_go", "clicked_go"}, ids)
		require.Len(t, completer.requests, 1)
		assert.Equal(t, "action_id_array", completer.requests[0].SchemaName)
	})

	t.Run("BatchingAndKnownIDPropagation", func(t *testing.T) {
		call := 0
		completer := &fakeCompleter{respond: func(req CompletionRequest) (string, error) {
			call++
			if call == 1 {
				return `{"action_ids":["clicked_checkout","clicked_checkout"]}`, nil
			}
			return `{"action_ids":["clicked_checkout"]}`, nil
		}}

		actions := []analysis.Action{clickAction("1"), clickAction("2"), clickAction("3")}
		ids, err := GenerateActionIDs(ctx, completer, actions, []string{"opened_cart"}, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"clicked_checkout", "clicked_checkout", "clicked_checkout"}, ids)
		require.Len(t, completer.requests, 2)

		// The second batch sees both the pre-existing ID and the one the
		// first batch produced.
		assert.Contains(t, completer.requests[0].Prompt, "opened_cart")
		assert.Contains(t, completer.requests[1].Prompt, "opened_cart")
		assert.Contains(t, completer.requests[1].Prompt, "clicked_checkout")
	})

	t.Run("MalformedResponseFallsBack", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			return `this is not json`, nil
		}}

		ids, err := GenerateActionIDs(ctx, completer, []analysis.Action{clickAction("1"), clickAction("2")}, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"clicked_element_0", "clicked_element_1"}, ids)
	})

	t.Run("LengthMismatchFallsBack", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			return `{"action_ids":["only_one"]}`, nil
		}}

		ids, err := GenerateActionIDs(ctx, completer, []analysis.Action{clickAction("1"), clickAction("2")}, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"clicked_element_0", "clicked_element_1"}, ids)
	})

	t.Run("TransportErrorAborts", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			return "", errors.New("connection refused")
		}}

		_, err := GenerateActionIDs(ctx, completer, []analysis.Action{clickAction("1")}, nil, 10)
		require.Error(t, err)
	})

	t.Run("NoActions", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			t.Fatal("completer should not be called")
			return "", nil
		}}
		ids, err := GenerateActionIDs(ctx, completer, nil, nil, 10)
		require.NoError(t, err)
		assert.Nil(t, ids)
	})
}

func TestGenerateInsights(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			return `{"insights":[{"title":"Checkout friction","summary":"Users repeat the checkout click.","category":"friction"}]}`, nil
		}}

		insights, err := GenerateInsights(ctx, completer, map[string][]string{
			"s1": {"User clicked on BUTTON with text 'Checkout' and id 7"},
			"s2": {"Page loaded: https://example.com"},
		})
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Equal(t, "Checkout friction", insights[0].Title)
		assert.Equal(t, "friction", insights[0].Category)

		require.Len(t, completer.requests, 1)
		prompt := completer.requests[0].Prompt
		assert.Contains(t, prompt, "Session s1:")
		assert.Contains(t, prompt, "1. User clicked on BUTTON with text 'Checkout' and id 7")
		assert.Contains(t, prompt, "Session s2:")
	})

	t.Run("MalformedResponse", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			return "no json here", nil
		}}
		_, err := GenerateInsights(ctx, completer, map[string][]string{"s1": {"line"}})
		require.Error(t, err)
	})

	t.Run("EmptyActivity", func(t *testing.T) {
		completer := &fakeCompleter{respond: func(CompletionRequest) (string, error) {
			return "", fmt.Errorf("should not be called")
		}}
		insights, err := GenerateInsights(ctx, completer, nil)
		require.NoError(t, err)
		assert.Nil(t, insights)
	})
}
