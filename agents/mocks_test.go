package agents

import (
	"context"
	"encoding/json"
)

// mockLLM returns canned responses, optionally failing
type mockLLM struct {
	response string
	err      error
	calls    int
}

func (m *mockLLM) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result interface{}) error {
	text, err := m.InvokeWithPrompt(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(text), result)
}
