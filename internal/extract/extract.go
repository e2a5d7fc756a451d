// Package extract decodes message body payloads into plain-text and
// HTML content.
package extract

import (
	"encoding/base64"

	"google.golang.org/api/gmail/v1"
)

// maxPartDepth bounds the part-tree walk; real messages nest a handful
// of levels at most.
const maxPartDepth = 32

// Part is one node of a MIME part tree: either a leaf carrying encoded
// data or a branch with child parts.
type Part struct {
	MimeType string
	Data     string
	Parts    []*Part
}

// Content holds the extracted bodies of a message. Either field may be
// empty when the message carries no part of that type.
type Content struct {
	BodyText string
	BodyHTML string
}

// FromGmail converts a Gmail API payload into a provider-neutral part
// tree. A message without nested parts becomes a single leaf using the
// payload's own MIME type.
func FromGmail(payload *gmail.MessagePart) *Part {
	if payload == nil {
		return nil
	}

	p := &Part{MimeType: payload.MimeType}
	if payload.Body != nil {
		p.Data = payload.Body.Data
	}

	for _, child := range payload.Parts {
		p.Parts = append(p.Parts, FromGmail(child))
	}

	return p
}

// Extract walks the part tree depth-first and concatenates every
// decodable text/plain part into BodyText and every text/html part
// into BodyHTML. A part that fails to decode contributes nothing and
// never aborts extraction of its siblings.
func Extract(root *Part) Content {
	var c Content
	walk(root, 0, &c)
	return c
}

func walk(p *Part, depth int, c *Content) {
	if p == nil || depth > maxPartDepth {
		return
	}

	if len(p.Parts) > 0 {
		for _, child := range p.Parts {
			walk(child, depth+1, c)
		}
		return
	}

	if p.Data == "" {
		return
	}

	switch p.MimeType {
	case "text/plain":
		c.BodyText += decodeBase64(p.Data)
	case "text/html":
		c.BodyHTML += decodeBase64(p.Data)
	}
}

// decodeBase64 decodes base64url data as produced by the Gmail API,
// falling back to standard base64. Malformed data yields an empty
// string.
func decodeBase64(data string) string {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
	} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded)
		}
	}
	return ""
}
