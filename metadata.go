package stackdoc

import "context"

// Category classifies the tool or library a document describes.
// The zero value means "no category".
type Category string

// The ten canonical categories.
const (
	CategoryNone            Category = ""
	CategoryFrontendDesign  Category = "Frontend/Design"
	CategoryORMDatabase     Category = "ORM/Database"
	CategoryAuthentication  Category = "Authentication"
	CategorySecurity        Category = "Security"
	CategoryStateManagement Category = "State Management"
	CategoryTesting         Category = "Testing"
	CategoryAPIBackend      Category = "API/Backend"
	CategoryDevOps          Category = "DevOps"
	CategoryDocumentation   Category = "Documentation"
	CategoryMonitoring      Category = "Monitoring"
)

// Categories returns the canonical categories in display order.
func Categories() []Category {
	return []Category{
		CategoryFrontendDesign,
		CategoryORMDatabase,
		CategoryAuthentication,
		CategorySecurity,
		CategoryStateManagement,
		CategoryTesting,
		CategoryAPIBackend,
		CategoryDevOps,
		CategoryDocumentation,
		CategoryMonitoring,
	}
}

// ParseCategory coerces s to a canonical category. Anything that is not one
// of the ten canonical values becomes CategoryNone; it is never an error.
func ParseCategory(s string) Category {
	for _, c := range Categories() {
		if string(c) == s {
			return c
		}
	}
	return CategoryNone
}

// ExtractedMetadata is the structured form of a natural-language description
// of a tool or library.
type ExtractedMetadata struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
}

// Complete reports whether the record has everything needed to submit a
// document without manual correction.
func (m *ExtractedMetadata) Complete() bool {
	return m.Name != "" && m.Category != CategoryNone && m.URL != ""
}

// InputParser turns free text into an ExtractedMetadata record.
type InputParser interface {
	// Parse extracts metadata from free text. Missing fields are left empty
	// and invalid categories are coerced to CategoryNone, so a reachable
	// model always yields a record.
	// Returns EINVALID for empty input and EUNAVAILABLE when the model
	// cannot be reached.
	Parse(ctx context.Context, text string) (*ExtractedMetadata, error)
}
