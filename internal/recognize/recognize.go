// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recognize turns rendered note PDFs into Markdown via a generative
// vision API. The wire format is the Gemini generateContent REST call; no
// SDK, just the two request/response shapes the pipeline needs.
package recognize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/note-engine/internal/httputil"
	"github.com/pdiddy/note-engine/pkg/types"
)

// geminiEndpointBase is the generateContent endpoint prefix. Package-level
// var for test substitution.
var geminiEndpointBase = "https://generativelanguage.googleapis.com/v1beta/models"

const defaultModel = "gemini-2.0-flash"

// Backend transcribes a rendered note PDF into Markdown.
type Backend interface {
	Recognize(ctx context.Context, pdf []byte) (string, error)
}

// GeminiBackend calls the Gemini API with the PDF inlined base64 and the
// transcription rules as the text part.
type GeminiBackend struct {
	APIKey     string
	Model      string
	Rules      []string
	MaxRetries int
	Client     *http.Client
}

// NewGeminiBackend builds a backend from config, falling back to the default
// model and built-in rules.
func NewGeminiBackend(cfg types.RecognitionConfig, client *http.Client) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("recognition API key is not set")
	}
	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &GeminiBackend{
		APIKey:     cfg.APIKey,
		Model:      model,
		Rules:      rules,
		MaxRetries: cfg.MaxRetries,
		Client:     client,
	}, nil
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// geminiContent is one content block of parts.
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiPart is either text or inline binary data.
type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

// geminiInlineData carries base64-encoded bytes with their MIME type.
type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// geminiResponse is the subset of the generateContent response the pipeline
// reads.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Recognize sends the PDF for transcription and returns the Markdown text.
// A response without the expected candidate structure is an error carrying
// the raw body, since that is the only diagnostic the API gives.
func (g *GeminiBackend) Recognize(ctx context.Context, pdf []byte) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: instructions(g.Rules)},
				{InlineData: &geminiInlineData{
					MIMEType: "application/pdf",
					Data:     base64.StdEncoding.EncodeToString(pdf),
				}},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding recognition request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiEndpointBase, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating recognition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, g.Client, req, g.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("recognition API request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading recognition response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recognition API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("parsing recognition response: %w", err)
	}

	if len(gr.Candidates) == 0 ||
		len(gr.Candidates[0].Content.Parts) == 0 ||
		strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text) == "" {
		return "", fmt.Errorf("recognition response has no transcription text: %s", strings.TrimSpace(string(raw)))
	}

	return strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text), nil
}
