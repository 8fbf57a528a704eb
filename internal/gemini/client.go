// Package gemini generates schema-constrained content through the Gemini API
// using an API key.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Lllllllleong/resumeflow/internal/models"
	"google.golang.org/genai"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/"
	DefaultModel   = "gemini-2.5-flash"

	// PlaceholderAPIKey is the value shipped in sample configuration. It is
	// treated the same as an unset key.
	PlaceholderAPIKey = "YOUR_GEMINI_API_KEY"
)

var (
	// ErrMissingAPIKey is returned before any network call when no usable key is configured.
	ErrMissingAPIKey = errors.New("gemini API key is not set")
	// ErrEmptyResponse is returned when the reply has no candidate text.
	ErrEmptyResponse = errors.New("gemini response contained no candidate text")
)

// Client calls generateContent on the Gemini API backend.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	genaiClient *genai.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at a different host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// NewClient creates a client for model; an empty model selects DefaultModel.
// Nothing is dialed here. Without a usable key the client is still returned,
// but every Generate call fails with ErrMissingAPIKey.
func NewClient(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.HasCredential() {
		return c, nil
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	c.genaiClient = genaiClient
	return c, nil
}

// HasCredential reports whether a real API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != "" && c.apiKey != PlaceholderAPIKey
}

// Generate sends prompt with a response schema and returns the text of the first
// part of the first candidate. A single attempt is made.
func (c *Client) Generate(ctx context.Context, prompt string, schema *models.Schema) (string, error) {
	if c.genaiClient == nil {
		return "", ErrMissingAPIKey
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.0),
	}
	if schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toGenaiSchema(schema)
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 || candidate.Content.Parts[0] == nil {
		return "", fmt.Errorf("%w: candidate has no parts (finish reason %q)", ErrEmptyResponse, candidate.FinishReason)
	}
	if candidate.Content.Parts[0].Text == "" {
		return "", fmt.Errorf("%w: first part has no text", ErrEmptyResponse)
	}
	return candidate.Content.Parts[0].Text, nil
}

func toGenaiSchema(s *models.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:     toGenaiType(s.Type),
		Required: s.Required,
		Items:    toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t string) genai.Type {
	switch t {
	case models.SchemaObject:
		return genai.TypeObject
	case models.SchemaArray:
		return genai.TypeArray
	case models.SchemaString:
		return genai.TypeString
	default:
		return genai.TypeUnspecified
	}
}
