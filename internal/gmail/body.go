package gmail

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// Body holds the extracted message content. Either field may be empty;
// per media type only the first part that decodes to something is kept.
type Body struct {
	Text string
	HTML string
}

// ExtractBody walks a message's MIME tree depth-first and returns the
// first plain-text and first HTML leaf content. The walk stops as soon
// as both have been found. Missing or malformed body data degrades to
// empty strings; extraction never fails.
func ExtractBody(payload *gmail.MessagePart) Body {
	var body Body
	extractFromPart(payload, &body)
	return body
}

func extractFromPart(part *gmail.MessagePart, body *Body) bool {
	if part == nil {
		return false
	}

	switch part.MimeType {
	case "text/plain":
		if body.Text == "" {
			body.Text = decodeBodyData(part.Body)
		}
	case "text/html":
		if body.HTML == "" {
			body.HTML = decodeBodyData(part.Body)
		}
	default:
		for _, p := range part.Parts {
			if extractFromPart(p, body) {
				return true
			}
		}
	}

	return body.Text != "" && body.HTML != ""
}

// decodeBodyData decodes the URL-safe base64 inline body data. Decode
// errors are recovered by keeping whatever prefix decodes cleanly, and
// invalid UTF-8 sequences are dropped rather than surfaced.
func decodeBodyData(b *gmail.MessagePartBody) string {
	if b == nil || b.Data == "" {
		return ""
	}

	data, err := base64.URLEncoding.DecodeString(b.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(b.Data)
	}
	if err != nil {
		// Lossy fallback: decode as far as the input allows
		buf := make([]byte, base64.RawURLEncoding.DecodedLen(len(b.Data)))
		n, _ := base64.RawURLEncoding.Decode(buf, []byte(b.Data))
		data = buf[:n]
	}

	return strings.ToValidUTF8(string(data), "")
}
