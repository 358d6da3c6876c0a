package markdown

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"

	"github.com/starford/scraps/internal/apperr"
)

const metadataDelim = "+++"

// GetMetadataText returns the raw text between a leading "+++" line and the
// next "+++". The opening delimiter must start the document. "---" blocks are
// not frontmatter.
func GetMetadataText(text string) (string, bool) {
	head, tail, ok := strings.Cut(text, metadataDelim+"\n")
	if !ok || head != "" {
		return "", false
	}
	meta, _, ok := strings.Cut(tail, metadataDelim)
	if !ok {
		return "", false
	}
	return meta, true
}

// IgnoreMetadata strips a well-formed "+++" block and the first newline that
// follows it. Any other input is returned unchanged.
func IgnoreMetadata(text string) string {
	head, tail, ok := strings.Cut(text, metadataDelim+"\n")
	if !ok || head != "" {
		return text
	}
	_, body, ok := strings.Cut(tail, metadataDelim)
	if !ok {
		return text
	}
	return strings.Replace(body, "\n", "", 1)
}

// Metadata is the TOML frontmatter understood by scrap templates.
type Metadata struct {
	Title string `toml:"title"`
}

var tomlFormat = frontmatter.NewFormat(metadataDelim, metadataDelim, toml.Unmarshal)

// DecodeMetadata decodes the frontmatter of text. ok is false when text has
// no frontmatter block.
func DecodeMetadata(text string) (meta Metadata, ok bool, err error) {
	if _, ok = GetMetadataText(text); !ok {
		return Metadata{}, false, nil
	}
	if _, err = frontmatter.Parse(strings.NewReader(text), &meta, tomlFormat); err != nil {
		return Metadata{}, true, fmt.Errorf("decode metadata: %w: %w", apperr.ErrParse, err)
	}
	return meta, true, nil
}
