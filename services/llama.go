package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// ChatMessage is one turn of a conversation passed to the generator.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tune a single generation call. Zero values fall back to
// the generator defaults.
type ChatOptions struct {
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

// ChatResult carries the completion plus token accounting.
type ChatResult struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

var summaryStyles = map[string]string{
	"concise":  "Provide a concise summary in 2-3 sentences.",
	"detailed": "Provide a detailed summary covering all main points.",
	"bullets":  "Provide a summary as a bulleted list of key points.",
}

// Llama generates text against a local Ollama server through its
// OpenAI-compatible endpoint. No API key is required; the placeholder
// credential keeps the client library satisfied.
type Llama struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

// NewLlama builds a generator for the given Ollama host and model name.
func NewLlama(host, model string, logger *logrus.Logger) *Llama {
	config := openai.DefaultConfig("not-needed")
	config.BaseURL = strings.TrimRight(host, "/") + "/v1"

	return &Llama{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}
}

// Model reports the configured model name.
func (l *Llama) Model() string { return l.model }

func (l *Llama) buildMessages(messages []ChatMessage, systemPrompt string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, message := range messages {
		role := message.Role
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: message.Content})
	}
	return out
}

// Chat runs one non-streaming completion over the conversation.
func (l *Llama) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*ChatResult, error) {
	request := openai.ChatCompletionRequest{
		Model:       l.model,
		Messages:    l.buildMessages(messages, opts.SystemPrompt),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	response, err := l.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, errors.Wrap(err, "chat completion failed")
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	l.logger.WithFields(logrus.Fields{
		"model":             l.model,
		"prompt_tokens":     response.Usage.PromptTokens,
		"completion_tokens": response.Usage.CompletionTokens,
	}).Debug("chat completion finished")

	return &ChatResult{
		Content:          response.Choices[0].Message.Content,
		Model:            l.model,
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
	}, nil
}

// ChatStream runs a streaming completion and invokes emit for every content
// delta. It returns once the stream is drained or ctx is cancelled.
func (l *Llama) ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions, emit func(delta string) error) error {
	request := openai.ChatCompletionRequest{
		Model:       l.model,
		Messages:    l.buildMessages(messages, opts.SystemPrompt),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      true,
	}

	stream, err := l.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return errors.Wrap(err, "opening chat stream")
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading chat stream")
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := emit(delta); err != nil {
				return err
			}
		}
	}
}

// Generate is a single-prompt convenience wrapper around Chat.
func (l *Llama) Generate(ctx context.Context, prompt string, opts ChatOptions) (string, error) {
	result, err := l.Chat(ctx, []ChatMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}}, opts)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// Summarize condenses text in one of the known styles. Unknown styles fall
// back to concise.
func (l *Llama) Summarize(ctx context.Context, text, style string) (string, error) {
	instruction, ok := summaryStyles[style]
	if !ok {
		instruction = summaryStyles["concise"]
	}

	prompt := fmt.Sprintf("%s\n\nText to summarize:\n%s", instruction, text)
	return l.Generate(ctx, prompt, ChatOptions{Temperature: 0.3})
}

// Keywords asks the model for comma-separated keywords and parses its answer.
func (l *Llama) Keywords(ctx context.Context, text string, max int) ([]string, error) {
	prompt := fmt.Sprintf(
		"Extract up to %d keywords from the following text. Respond with the keywords only, comma separated.\n\n%s",
		max, text)

	raw, err := l.Generate(ctx, prompt, ChatOptions{Temperature: 0.1})
	if err != nil {
		return nil, err
	}

	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		word := strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "."))
		if word == "" {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == max {
			break
		}
	}
	return keywords, nil
}
