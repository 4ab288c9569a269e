package provider

import (
	"testing"

	"sgpt/model"
)

func conversationFixture() []model.Message {
	return []model.Message{
		{Role: model.RoleSystem, Content: "You are an assistant."},
		{Role: model.RoleUser, Content: "list files"},
		{Role: model.RoleAssistant, Content: "ls -la"},
	}
}

func TestConvertToAnthropicMessagesSplitsSystem(t *testing.T) {
	msgs, system := ConvertToAnthropicMessages(conversationFixture())

	if len(system) != 1 {
		t.Fatalf("expected 1 system block, got %d", len(system))
	}
	if system[0].Text != "You are an assistant." {
		t.Errorf("unexpected system text: %q", system[0].Text)
	}
	// The system message must not remain in the message list.
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
}

func TestConvertToOpenAIMessagesKeepsOrder(t *testing.T) {
	msgs := ConvertToOpenAIMessages(conversationFixture())
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].OfSystem == nil {
		t.Error("expected first message to be a system message")
	}
	if msgs[1].OfUser == nil {
		t.Error("expected second message to be a user message")
	}
	if msgs[2].OfAssistant == nil {
		t.Error("expected third message to be an assistant message")
	}
}

func TestConvertToOllamaMessages(t *testing.T) {
	msgs := ConvertToOllamaMessages(conversationFixture())
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range conversationFixture() {
		if msgs[i].Role != want.Role || msgs[i].Content != want.Content {
			t.Errorf("message %d: got %s/%q, want %s/%q",
				i, msgs[i].Role, msgs[i].Content, want.Role, want.Content)
		}
	}
}
