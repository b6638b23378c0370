package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"pdfrag/internal/domain"
)

// Answerer generates an answer grounded strictly in a retrieved
// context. It is a plain pass-through call on top of the retrieval
// core: the context string goes in verbatim.
type Answerer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

func NewAnswerer(cfg Config) (*Answerer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1500
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.2
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Answerer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Answer asks the model the user's question, constrained to the
// supplied context.
func (a *Answerer) Answer(ctx context.Context, question string, docContext domain.Context, docName string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(docContext.Text, docName)},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func systemPrompt(contextText, docName string) string {
	if docName == "" {
		docName = "the uploaded document"
	}
	return fmt.Sprintf(`You are an AI assistant specialized in answering questions based on the provided PDF document %q.

IMPORTANT INSTRUCTIONS:
1. Base your answers EXCLUSIVELY on the information provided in the CONTEXT BLOCK below.
2. If the answer cannot be found in the context, clearly state: "I don't see information about this in the document. Could you rephrase your question or ask about something else covered in the document?"
3. Do not make up or infer information not present in the context.
4. When referencing specific parts of the document, mention the page number if available (e.g., "As mentioned on page 5...").
5. Provide concise, accurate answers that directly address the user's question.
6. If the context is insufficient but you have some partial information, share what you can find and explain what's missing.

START CONTEXT BLOCK
%s
END OF CONTEXT BLOCK

Remember: You are answering questions about %q. Only use information from the context above.`, docName, contextText, docName)
}
