package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gmailv1 "google.golang.org/api/gmail/v1"

	"prioritymail/internal/extract"
)

func TestExtractSinglePart(t *testing.T) {
	part := &extract.Part{MimeType: "text/plain", Data: "SGVsbG8="}

	content := extract.Extract(part)

	assert.Equal(t, "Hello", content.BodyText)
	assert.Empty(t, content.BodyHTML)
}

func TestExtractNestedTree(t *testing.T) {
	root := &extract.Part{
		MimeType: "multipart/mixed",
		Parts: []*extract.Part{
			{
				MimeType: "multipart/alternative",
				Parts: []*extract.Part{
					{MimeType: "text/plain", Data: "SGVsbG8s"},                 // "Hello,"
					{MimeType: "text/html", Data: "PGI+SGVsbG8sPC9iPg=="},      // "<b>Hello,</b>"
				},
			},
			{MimeType: "text/plain", Data: "IHdvcmxk"}, // " world"
			{MimeType: "application/pdf", Data: "JVBERg=="},
		},
	}

	content := extract.Extract(root)

	assert.Equal(t, "Hello, world", content.BodyText, "matching parts concatenate in walk order")
	assert.Equal(t, "<b>Hello,</b>", content.BodyHTML)
}

func TestExtractMalformedPartSkipped(t *testing.T) {
	root := &extract.Part{
		MimeType: "multipart/mixed",
		Parts: []*extract.Part{
			{MimeType: "text/plain", Data: "!!!not base64!!!"},
			{MimeType: "text/plain", Data: "SGVsbG8="},
			{MimeType: "text/plain"},
		},
	}

	content := extract.Extract(root)

	assert.Equal(t, "Hello", content.BodyText, "bad sibling must not abort extraction")
}

func TestExtractUnpaddedBase64URLData(t *testing.T) {
	// Gmail emits unpadded base64url.
	part := &extract.Part{MimeType: "text/plain", Data: "SGVsbG8"}

	content := extract.Extract(part)

	assert.Equal(t, "Hello", content.BodyText)
}

func TestExtractNil(t *testing.T) {
	content := extract.Extract(nil)

	assert.Empty(t, content.BodyText)
	assert.Empty(t, content.BodyHTML)
}

func TestFromGmail(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailv1.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmailv1.MessagePartBody{Data: "SGVsbG8="},
			},
			{
				MimeType: "text/html",
				Body:     &gmailv1.MessagePartBody{Data: "PGI+SGVsbG88L2I+"},
			},
		},
	}

	content := extract.Extract(extract.FromGmail(payload))

	assert.Equal(t, "Hello", content.BodyText)
	assert.Equal(t, "<b>Hello</b>", content.BodyHTML)
}

func TestFromGmailSinglePartMessage(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailv1.MessagePartBody{Data: "SGVsbG8="},
	}

	content := extract.Extract(extract.FromGmail(payload))

	assert.Equal(t, "Hello", content.BodyText)
}
