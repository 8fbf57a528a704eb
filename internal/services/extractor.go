package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Lllllllleong/resumeflow/internal/models"
)

// DefaultResumeInstruction asks the model for the fields of models.ResumeDetails.
const DefaultResumeInstruction = `Analyze the following resume text and extract the key information.
Provide the name, phone number, email, a list of professional skills,
and a list of company names where the person has worked.`

// ContentGenerator sends a prompt to a generative-language model and returns the
// text of its first candidate, constrained by schema.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string, schema *models.Schema) (string, error)
}

// StructuredExtractor turns resume text into a models.ResumeDetails record.
type StructuredExtractor struct {
	generator ContentGenerator
}

func NewStructuredExtractor(generator ContentGenerator) *StructuredExtractor {
	return &StructuredExtractor{generator: generator}
}

// Extract makes a single generation call. Every failure is a StructuredExtractionError.
// An empty instruction selects DefaultResumeInstruction.
func (e *StructuredExtractor) Extract(ctx context.Context, text, instruction string) (*models.ResumeDetails, error) {
	if strings.TrimSpace(text) == "" {
		return nil, StructuredExtractionError("no resume text to analyze", nil)
	}
	if e.generator == nil {
		return nil, StructuredExtractionError("no generative service configured", nil)
	}

	raw, err := e.generator.Generate(ctx, BuildResumePrompt(text, instruction), models.ResumeSchema())
	if err != nil {
		return nil, StructuredExtractionError("generative service call failed", err)
	}

	details, err := ParseResumeDetails(raw)
	if err != nil {
		return nil, StructuredExtractionError("generative service reply is not a resume record", err)
	}
	return details, nil
}

// BuildResumePrompt embeds text after the instruction between --- fences.
func BuildResumePrompt(text, instruction string) string {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = DefaultResumeInstruction
	}
	return fmt.Sprintf("%s\nResume Text:\n---\n%s\n---\n", instruction, text)
}

// ParseResumeDetails decodes a schema-constrained reply. The reply must be a
// JSON object; a missing name or email is replaced with models.NotAvailable.
func ParseResumeDetails(raw string) (*models.ResumeDetails, error) {
	payload := trimCodeFence(raw)
	if !strings.HasPrefix(payload, "{") {
		return nil, errors.New("reply is not a JSON object")
	}

	var details models.ResumeDetails
	if err := json.Unmarshal([]byte(payload), &details); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}

	details.Name = orNotAvailable(details.Name)
	details.Email = orNotAvailable(details.Email)
	details.PhoneNumber = strings.TrimSpace(details.PhoneNumber)
	details.Skills = compact(details.Skills)
	details.CompaniesWorkedFor = compact(details.CompaniesWorkedFor)
	return &details, nil
}

// trimCodeFence strips a markdown code fence some models wrap JSON in.
func trimCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func orNotAvailable(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return models.NotAvailable
	}
	return s
}

// compact trims every entry and drops blank ones.
func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
