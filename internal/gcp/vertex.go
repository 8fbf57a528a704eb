package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/resumeflow/internal/models"
)

// --- Resume Extraction Model Prompts ---
const ResumeSystemPrompt = "You are a recruiting assistant that reads resumes and extracts candidate details. Only report information that is present in the resume text. You must output your response as a single JSON object."

// ErrEmptyResponse is returned when the model answers without any text part.
var ErrEmptyResponse = errors.New("model response contained no text")

// VertexClient generates schema-constrained content through Vertex AI.
type VertexClient struct {
	modelName  string
	baseClient *genai.Client
}

// NewVertexClient creates a new client for the given model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexClient{
		modelName:  modelName,
		baseClient: baseClient,
	}, nil
}

// resumeModel configures a model handle for one request. Handles are cheap and
// are not shared so concurrent invocations never see each other's config.
func (c *VertexClient) resumeModel(schema *models.Schema) *genai.GenerativeModel {
	model := c.baseClient.GenerativeModel(c.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ResumeSystemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(schema),
		Temperature:      genai.Ptr[float32](0.0),
	}
	return model
}

// Generate sends prompt to the model and returns the text of the first part of
// the first candidate.
func (c *VertexClient) Generate(ctx context.Context, prompt string, schema *models.Schema) (string, error) {
	resp, err := c.resumeModel(schema).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: first part is %T", ErrEmptyResponse, resp.Candidates[0].Content.Parts[0])
	}
	return string(txt), nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
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
