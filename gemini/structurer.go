package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/stackdoc"
	"google.golang.org/genai"
)

// Strategy selects how a Structurer talks to the model.
type Strategy int

const (
	// SinglePass asks for the tree directly in JSON mode.
	SinglePass Strategy = iota

	// TwoPass asks for prose first and converts it to a tree in a
	// second, colder call.
	TwoPass
)

// String returns the strategy name used in configuration.
func (s Strategy) String() string {
	switch s {
	case TwoPass:
		return "two-pass"
	default:
		return "single-pass"
	}
}

// ParseStrategy returns the strategy named s.
// Returns EINVALID for unknown names.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single-pass", "single":
		return SinglePass, nil
	case "two-pass", "two":
		return TwoPass, nil
	}
	return SinglePass, stackdoc.Errorf(stackdoc.EINVALID, "unknown structuring strategy %q", s)
}

// schemaDepth is how many levels of nesting the response schema spells
// out. Deeper content is still accepted but not constrained.
const schemaDepth = 5

// Ensure Structurer implements stackdoc.Structurer at compile time.
var _ stackdoc.Structurer = (*Structurer)(nil)

// Structurer implements stackdoc.Structurer using Google Gemini.
type Structurer struct {
	client   *genai.Client
	model    string
	strategy Strategy
}

// StructurerOption configures a Structurer.
type StructurerOption func(*Structurer)

// WithModel sets the Gemini model.
func WithModel(model string) StructurerOption {
	return func(s *Structurer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithStrategy sets the structuring strategy.
func WithStrategy(strategy Strategy) StructurerOption {
	return func(s *Structurer) {
		s.strategy = strategy
	}
}

// NewStructurer creates a new Structurer.
func NewStructurer(client *genai.Client, opts ...StructurerOption) *Structurer {
	s := &Structurer{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Structure converts the excerpt into a validated tree.
// Returns EUNAVAILABLE when the model cannot be reached and ESTRUCTURE when
// its output is not a valid tree.
func (s *Structurer) Structure(ctx context.Context, req stackdoc.StructureRequest) (*stackdoc.Tree, error) {
	if strings.TrimSpace(req.Excerpt) == "" && req.Title == "" {
		return nil, stackdoc.Errorf(stackdoc.EINVALID, "nothing to structure")
	}

	prompt := BuildStructurePrompt(req)
	temperature := structureTemperature

	if s.strategy == TwoPass {
		prose, err := s.overview(ctx, req)
		if err != nil {
			return nil, err
		}
		prompt = BuildConvertPrompt(prose, req.Example)
		temperature = convertTemperature
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, userContent(prompt), BuildStructureConfig(temperature))
	if err != nil {
		return nil, unavailable("structure", err)
	}
	if result == nil {
		return nil, stackdoc.Errorf(stackdoc.ESTRUCTURE, "gemini returned nil result")
	}

	return DecodeTree(result.Text())
}

// overview runs the first call of the two-pass strategy.
func (s *Structurer) overview(ctx context.Context, req stackdoc.StructureRequest) (string, error) {
	temp := structureTemperature
	result, err := s.client.Models.GenerateContent(ctx, s.model, userContent(BuildOverviewPrompt(req)), &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(overviewSystem),
		Temperature:       &temp,
		MaxOutputTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", unavailable("overview", err)
	}
	if result == nil || strings.TrimSpace(result.Text()) == "" {
		return "", stackdoc.Errorf(stackdoc.ESTRUCTURE, "gemini returned no overview")
	}
	return result.Text(), nil
}

// BuildStructureConfig returns the JSON-mode config for tree generation.
func BuildStructureConfig(temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(structureSystem),
		Temperature:       &temperature,
		MaxOutputTokens:   maxOutputTokens,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    TreeSchema(),
	}
}

// TreeSchema returns the response schema of a document tree.
func TreeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type":    {Type: genai.TypeString, Enum: []string{string(stackdoc.NodeDoc)}},
			"content": {Type: genai.TypeArray, Items: nodeSchema(schemaDepth)},
		},
		Required: []string{"type", "content"},
	}
}

func nodeSchema(depth int) *genai.Schema {
	s := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type": {Type: genai.TypeString, Enum: nodeTypes()},
			"text": {Type: genai.TypeString},
			"attrs": {
				Type:     genai.TypeObject,
				Nullable: genai.Ptr(true),
				Properties: map[string]*genai.Schema{
					"level":     {Type: genai.TypeInteger, Nullable: genai.Ptr(true)},
					"textAlign": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"language":  {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"start":     {Type: genai.TypeInteger, Nullable: genai.Ptr(true)},
					"name":      {Type: genai.TypeString, Nullable: genai.Ptr(true)},
				},
			},
			"marks": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type": {Type: genai.TypeString, Enum: markTypes()},
						"attrs": {
							Type:       genai.TypeObject,
							Nullable:   genai.Ptr(true),
							Properties: map[string]*genai.Schema{"href": {Type: genai.TypeString}},
						},
					},
					Required: []string{"type"},
				},
			},
		},
		Required: []string{"type"},
	}
	if depth > 1 {
		s.Properties["content"] = &genai.Schema{Type: genai.TypeArray, Items: nodeSchema(depth - 1)}
	}
	return s
}

func nodeTypes() []string {
	return []string{
		string(stackdoc.NodeHeading), string(stackdoc.NodeParagraph),
		string(stackdoc.NodeBulletList), string(stackdoc.NodeOrderedList),
		string(stackdoc.NodeListItem), string(stackdoc.NodeCodeBlock),
		string(stackdoc.NodeBlockquote), string(stackdoc.NodeHorizontalRule),
		string(stackdoc.NodeHardBreak), string(stackdoc.NodeTable),
		string(stackdoc.NodeTableRow), string(stackdoc.NodeTableHeader),
		string(stackdoc.NodeTableCell), string(stackdoc.NodeEmoji),
		string(stackdoc.NodeText),
	}
}

func markTypes() []string {
	return []string{
		string(stackdoc.MarkBold), string(stackdoc.MarkItalic),
		string(stackdoc.MarkStrike), string(stackdoc.MarkCode),
		string(stackdoc.MarkLink),
	}
}

// DecodeTree parses model output into a validated tree. The tree may be
// the whole output or wrapped as {"tiptap": ...}.
// Returns ESTRUCTURE for anything else.
func DecodeTree(text string) (*stackdoc.Tree, error) {
	text = stripFences(text)
	if text == "" {
		return nil, stackdoc.Errorf(stackdoc.ESTRUCTURE, "empty model output")
	}

	var wrapped struct {
		Tiptap json.RawMessage `json:"tiptap"`
	}
	data := []byte(text)
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Tiptap) > 0 {
		data = wrapped.Tiptap
	}

	tree, err := stackdoc.ParseTree(data)
	if err != nil {
		return nil, stackdoc.Errorf(stackdoc.ESTRUCTURE, "invalid tree from model: %s", stackdoc.ErrorMessage(err))
	}
	return tree, nil
}
