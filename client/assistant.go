package client

import (
	"context"
	"fmt"
	"net/http"
)

// AssistantClient talks to the external AI chat service. Only the
// request/response shapes are part of this module's contract; the service
// itself lives elsewhere.
type AssistantClient struct {
	api *Client
}

// NewAssistantClient creates a client for the chat service at baseURL.
func NewAssistantClient(baseURL string, opts ...Option) *AssistantClient {
	return &AssistantClient{api: New(baseURL, opts...)}
}

// Chat is one conversation.
type Chat struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chats lists all conversations.
func (c *AssistantClient) Chats(ctx context.Context) ([]Chat, error) {
	chats := []Chat{}
	if err := c.api.do(ctx, http.MethodGet, "/chats", nil, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat starts a new conversation.
func (c *AssistantClient) CreateChat(ctx context.Context, title string) (Chat, error) {
	var chat Chat
	err := c.api.do(ctx, http.MethodPost, "/chats", nil, map[string]string{"title": title}, &chat)
	return chat, err
}

// GetChat fetches one conversation with its messages.
func (c *AssistantClient) GetChat(ctx context.Context, id string) (Chat, error) {
	var chat Chat
	err := c.api.do(ctx, http.MethodGet, "/chats/"+id, nil, nil, &chat)
	return chat, err
}

// RenameChat changes a conversation's title.
func (c *AssistantClient) RenameChat(ctx context.Context, id, title string) error {
	return c.api.do(ctx, http.MethodPatch, fmt.Sprintf("/chats/%s/title", id), nil, map[string]string{"title": title}, nil)
}

// ClearChat removes all messages from a conversation.
func (c *AssistantClient) ClearChat(ctx context.Context, id string) error {
	return c.api.do(ctx, http.MethodPost, fmt.Sprintf("/chats/%s/clear", id), nil, nil, nil)
}

// DeleteChat removes a conversation.
func (c *AssistantClient) DeleteChat(ctx context.Context, id string) error {
	return c.api.do(ctx, http.MethodDelete, "/chats/"+id, nil, nil, nil)
}

// SendMessage posts a user message and returns the assistant's reply.
func (c *AssistantClient) SendMessage(ctx context.Context, id, content string) (ChatMessage, error) {
	var reply ChatMessage
	err := c.api.do(ctx, http.MethodPost, fmt.Sprintf("/chats/%s/messages", id), nil, map[string]string{"content": content}, &reply)
	return reply, err
}
