package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	apiURL    = "https://api.groq.com/openai/v1/chat/completions"
	modelName = "openai/gpt-oss-120b"
)

// ChatMessage - сообщение протокола chat completions
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall - запрос модели на вызов именованного инструмента
type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// CompletionClient - точка вывода: messages + tools -> ответ модели
type CompletionClient interface {
	CreateCompletion(ctx context.Context, messages []ChatMessage, tools []Tool, toolChoice string) (*ChatMessage, error)
}

type Groq struct {
	token string
}

func NewGroq(token string) *Groq {
	return &Groq{
		token: token,
	}
}

type groqRequest struct {
	Model      string        `json:"model"`
	Messages   []ChatMessage `json:"messages"`
	Tools      []Tool        `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type groqResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

func (g *Groq) CreateCompletion(ctx context.Context, messages []ChatMessage, tools []Tool, toolChoice string) (*ChatMessage, error) {
	reqBody := groqRequest{
		Model:      modelName,
		Messages:   messages,
		Tools:      tools,
		ToolChoice: toolChoice,
	}

	jsonData, _ := json.Marshal(reqBody)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, apiURL,
		bytes.NewBuffer(jsonData))

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error: %s", string(body))
	}

	var result groqResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, errors.New("no response from groq")
	}

	return &result.Choices[0].Message, nil
}
