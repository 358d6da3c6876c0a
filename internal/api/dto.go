package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scraps/internal/scrapservice"
)

// ScrapDetail is the full scrap response type (aliased from the domain layer).
type ScrapDetail = scrapservice.ScrapDetail

// ScrapList wraps a list of scraps (aliased from the domain layer).
type ScrapList = scrapservice.ScrapList

// TagJSON is one tag with its backlink count (aliased from the domain layer).
type TagJSON = scrapservice.TagJSON

// KeyJSON identifies a scrap (aliased from the domain layer).
type KeyJSON = scrapservice.KeyJSON

// GenerateScrapRequest is the request body for creating a scrap from a
// template.
type GenerateScrapRequest struct {
	Template string `json:"template" example:"daily" validate:"required"`
	Title    string `json:"title,omitempty" example:"2024-01-01"`
}

// Validate checks the request before any template is read.
func (r GenerateScrapRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Template, validation.Required, validation.By(noPathSeparator)),
	)
}

func noPathSeparator(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) {
		return validation.NewError("validation_template_name", "must be a template name, not a path")
	}
	return nil
}

// GenerateScrapResponse is returned after a scrap was generated.
type GenerateScrapResponse struct {
	Path string `json:"path" example:"2024-01-01.md" validate:"required"`
}

// TemplateListResponse wraps template names.
type TemplateListResponse struct {
	Templates []string `json:"templates" validate:"required"`
}

// TagBacklinksResponse wraps the scraps referring to a tag.
type TagBacklinksResponse struct {
	Results []KeyJSON `json:"results" validate:"required"`
	Count   int       `json:"count" validate:"required"`
}
