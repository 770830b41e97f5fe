package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const visionPrompt = "Transcribe every line of text on this receipt exactly as printed, " +
	"top to bottom, one line per output line. Keep numbers, punctuation and spacing. " +
	"Do not summarise, translate or add anything. If there is no text, reply with nothing."

// OpenAIVisionProvider transcribes receipts with a vision-capable chat model.
type OpenAIVisionProvider struct {
	client     *openai.Client
	httpClient *http.Client
	model      string
}

// NewOpenAIVisionProvider creates a provider. baseURL may point at any
// OpenAI-compatible endpoint; empty uses api.openai.com.
func NewOpenAIVisionProvider(apiKey, model, baseURL string) *OpenAIVisionProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &OpenAIVisionProvider{
		client:     openai.NewClientWithConfig(cfg),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		model:      model,
	}
}

func (p *OpenAIVisionProvider) GetProviderName() string {
	return "OpenAI Vision"
}

// DetectText passes remote images by URL and inlines local files as data URLs.
func (p *OpenAIVisionProvider) DetectText(ctx context.Context, imageRef string) (*TextDetection, error) {
	imageURL := imageRef
	if !isHTTPRef(imageRef) {
		data, err := loadImage(ctx, p.httpClient, imageRef)
		if err != nil {
			return nil, err
		}
		imageURL = fmt.Sprintf("data:%s;base64,%s",
			http.DetectContentType(data), base64.StdEncoding.EncodeToString(data))
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		Temperature: 0,
		MaxTokens:   2048,
	})
	if err != nil {
		return nil, fmt.Errorf("openai vision error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, ErrNoText
	}
	return &TextDetection{TextAnnotations: []TextAnnotation{{Description: text}}}, nil
}
