package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/stackdoc"
	"google.golang.org/genai"
)

// parseFunction is the function the model is forced to call.
const parseFunction = "parse_document"

// Ensure InputParser implements stackdoc.InputParser at compile time.
var _ stackdoc.InputParser = (*InputParser)(nil)

// InputParser implements stackdoc.InputParser using Gemini function calling.
type InputParser struct {
	client *genai.Client
	model  string
}

// NewInputParser creates a new InputParser. An empty model uses DefaultModel.
func NewInputParser(client *genai.Client, model string) *InputParser {
	if model == "" {
		model = DefaultModel
	}
	return &InputParser{client: client, model: model}
}

// Parse extracts metadata from a free-text description of a tool.
func (p *InputParser) Parse(ctx context.Context, text string) (*stackdoc.ExtractedMetadata, error) {
	if strings.TrimSpace(text) == "" {
		return nil, stackdoc.Errorf(stackdoc.EINVALID, "Input is required")
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, userContent(text), BuildParseConfig())
	if err != nil {
		return nil, unavailable("Failed to parse input", err)
	}

	meta := &stackdoc.ExtractedMetadata{}
	if result == nil {
		return meta, nil
	}
	for _, call := range result.FunctionCalls() {
		if call.Name == parseFunction {
			return DecodeMetadata(call.Args), nil
		}
	}
	return meta, nil
}

// BuildParseConfig returns the config forcing a single parse_document call.
func BuildParseConfig() *genai.GenerateContentConfig {
	temp := parseTemperature
	return &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(parseSystem),
		Temperature:       &temp,
		MaxOutputTokens:   maxOutputTokens,
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{ParseDeclaration()},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{parseFunction},
			},
		},
	}
}

// ParseDeclaration declares the parse_document function.
func ParseDeclaration() *genai.FunctionDeclaration {
	categories := make([]string, 0, len(stackdoc.Categories()))
	for _, c := range stackdoc.Categories() {
		categories = append(categories, string(c))
	}
	return &genai.FunctionDeclaration{
		Name:        parseFunction,
		Description: "Parse document information from natural language input",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name": {
					Type:        genai.TypeString,
					Description: "Name of the tool/library/framework",
				},
				"category": {
					Type:        genai.TypeString,
					Enum:        categories,
					Description: "Category of the tool/library/framework",
				},
				"url": {
					Type:        genai.TypeString,
					Description: "Documentation URL of the tool/library/framework",
				},
				"description": {
					Type:        genai.TypeString,
					Description: "Brief description (2-3 sentences max)",
				},
			},
			Required: []string{"name", "category", "url", "description"},
		},
	}
}

// DecodeMetadata reads function-call arguments into a record. Missing or
// non-string fields are left empty and the category is soft-validated.
func DecodeMetadata(args map[string]any) *stackdoc.ExtractedMetadata {
	str := func(key string) string {
		s, _ := args[key].(string)
		return strings.TrimSpace(s)
	}
	return &stackdoc.ExtractedMetadata{
		Name:        str("name"),
		Category:    stackdoc.ParseCategory(str("category")),
		URL:         str("url"),
		Description: str("description"),
	}
}
