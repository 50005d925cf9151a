package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractBody_PlainTextRoot(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: b64("hello world")},
	}

	body := ExtractBody(payload)

	assert.Equal(t, "hello world", body.Text)
	assert.Empty(t, body.HTML)
}

func TestExtractBody_PlainTextRoot_AbsentBody(t *testing.T) {
	body := ExtractBody(&gmail.MessagePart{MimeType: "text/plain"})

	assert.Empty(t, body.Text)
	assert.Empty(t, body.HTML)
}

func TestExtractBody_HTMLRoot(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/html",
		Body:     &gmail.MessagePartBody{Data: b64("<p>hi</p>")},
	}

	body := ExtractBody(payload)

	assert.Empty(t, body.Text)
	assert.Equal(t, "<p>hi</p>", body.HTML)
}

func TestExtractBody_MultipartAlternative(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain")}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<b>html</b>")}},
		},
	}

	body := ExtractBody(payload)

	assert.Equal(t, "plain", body.Text)
	assert.Equal(t, "<b>html</b>", body.HTML)
}

func TestExtractBody_FirstPlainPartWins(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("first")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("second")}},
		},
	}

	body := ExtractBody(payload)

	assert.Equal(t, "first", body.Text)
	assert.Empty(t, body.HTML)
}

func TestExtractBody_NestedMultipart(t *testing.T) {
	// text parts hidden below multipart/alternative inside multipart/mixed
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("nested text")}},
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<i>nested html</i>")}},
				},
			},
			{MimeType: "application/pdf", Body: &gmail.MessagePartBody{AttachmentId: "att-1"}},
		},
	}

	body := ExtractBody(payload)

	assert.Equal(t, "nested text", body.Text)
	assert.Equal(t, "<i>nested html</i>", body.HTML)
}

func TestExtractBody_StopsOnceBothFound(t *testing.T) {
	// The second alternative block would overwrite if the walk kept going
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("keep text")}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("keep html")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("late text")}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("late html")}},
		},
	}

	body := ExtractBody(payload)

	assert.Equal(t, "keep text", body.Text)
	assert.Equal(t, "keep html", body.HTML)
}

func TestExtractBody_MimeTypeIsCaseSensitive(t *testing.T) {
	// Gmail reports lowercase media types; anything else is not a text leaf
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "TEXT/PLAIN", Body: &gmail.MessagePartBody{Data: b64("shouty")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("lower")}},
		},
	}

	body := ExtractBody(payload)

	assert.Equal(t, "lower", body.Text)
	assert.Empty(t, body.HTML)
}

func TestExtractBody_NoTextParts(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "image/png", Body: &gmail.MessagePartBody{AttachmentId: "att-1"}},
		},
	}

	body := ExtractBody(payload)

	assert.Empty(t, body.Text)
	assert.Empty(t, body.HTML)
}

func TestExtractBody_NilPayload(t *testing.T) {
	body := ExtractBody(nil)

	assert.Empty(t, body.Text)
	assert.Empty(t, body.HTML)
}

func TestDecodeBodyData_RawEncoding(t *testing.T) {
	// Gmail omits padding; the raw variant must decode too
	raw := base64.RawURLEncoding.EncodeToString([]byte("unpadded body"))

	got := decodeBodyData(&gmail.MessagePartBody{Data: raw})

	assert.Equal(t, "unpadded body", got)
}

func TestDecodeBodyData_MalformedInputDoesNotFail(t *testing.T) {
	got := decodeBodyData(&gmail.MessagePartBody{Data: "!!!not-base64!!!"})

	// Lossy decode: no panic, no error, possibly empty output
	assert.NotNil(t, got)
}

func TestDecodeBodyData_InvalidUTF8Dropped(t *testing.T) {
	data := base64.URLEncoding.EncodeToString([]byte{'o', 'k', 0xff, 0xfe, '!'})

	got := decodeBodyData(&gmail.MessagePartBody{Data: data})

	assert.Equal(t, "ok!", got)
}

func TestDecodeBodyData_Empty(t *testing.T) {
	assert.Empty(t, decodeBodyData(nil))
	assert.Empty(t, decodeBodyData(&gmail.MessagePartBody{}))
}
