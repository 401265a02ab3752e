package acp

import "fmt"

// Content block type tags (spec.md §3.4 union 4).
const (
	ContentText         = "text"
	ContentImage        = "image"
	ContentAudio        = "audio"
	ContentResourceLink = "resource_link"
	ContentResource     = "resource"
)

// ContentBlock is the tagged union of everything that can appear in a
// prompt or an agent message chunk. Type selects which of the remaining
// fields are meaningful; unused fields are omitted on encode.
type ContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// image / audio
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`

	// resource_link
	URI         string `json:"uri,omitempty"`
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Size        *int64 `json:"size,omitempty"`

	// resource
	Resource *EmbeddedResource `json:"resource,omitempty"`

	Annotations *Annotations `json:"annotations,omitempty"`
	Meta        Meta         `json:"_meta,omitempty"`
}

// Validate enforces the minimal required-field shape for each content
// block variant, returning an invalid_params-flavored error naming the
// missing field (spec.md §4.1 "Error conditions").
func (c ContentBlock) Validate() error {
	switch c.Type {
	case ContentText:
		if c.Text == "" {
			return fmt.Errorf("acp: content block %q: missing field \"text\"", c.Type)
		}
	case ContentImage, ContentAudio:
		if c.Data == "" {
			return fmt.Errorf("acp: content block %q: missing field \"data\"", c.Type)
		}
		if c.MimeType == "" {
			return fmt.Errorf("acp: content block %q: missing field \"mimeType\"", c.Type)
		}
	case ContentResourceLink:
		if c.URI == "" {
			return fmt.Errorf("acp: content block %q: missing field \"uri\"", c.Type)
		}
	case ContentResource:
		if c.Resource == nil {
			return fmt.Errorf("acp: content block %q: missing field \"resource\"", c.Type)
		}
	default:
		return fmt.Errorf("acp: content block: unrecognized type %q", c.Type)
	}
	return nil
}

// EmbeddedResource carries either inline text or a base64 blob — a
// structural union distinguished by the presence of "text" vs "blob"
// (spec.md §3.4 union 5).
type EmbeddedResource struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
	Meta     Meta   `json:"_meta,omitempty"`
}

// IsText reports whether this resource carries inline text rather than a
// binary blob.
func (r EmbeddedResource) IsText() bool { return r.Blob == "" }
