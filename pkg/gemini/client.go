package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pantrypal-app/pantrypal-backend/pkg/config"
)

// Client talks to the Gemini generateContent REST API.
type Client struct {
	http  *resty.Client
	model string
	cfg   config.GeminiConfig
}

// New builds a Gemini client from configuration. The API key is required.
func New(cfg config.GeminiConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		http:  client,
		model: cfg.Model,
		cfg:   cfg,
	}, nil
}

// ImagePart carries inline image bytes for multimodal prompts.
type ImagePart struct {
	MIMEType string
	Data     []byte
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends a text-only prompt and returns the model's reply text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []part{{Text: prompt}})
}

// GenerateWithImage sends a prompt alongside an inline image.
func (c *Client) GenerateWithImage(ctx context.Context, prompt string, image ImagePart) (string, error) {
	if len(image.Data) == 0 {
		return "", fmt.Errorf("image data is required")
	}
	mimeType := image.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return c.generate(ctx, []part{
		{Text: prompt},
		{InlineData: &inlineData{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}},
	})
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: parts}},
	}
	if c.cfg.MaxOutputTokens > 0 {
		body.GenerationConfig = &generationConfig{MaxOutputTokens: c.cfg.MaxOutputTokens}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 512))
	}

	var parsed generateResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("parsing gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}

	var out strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	return out.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
