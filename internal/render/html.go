package render

import (
	stdhtml "html"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// HTMLToText converts an HTML fragment to plain text. The DOM walk
// strips markup, skips script/style/head subtrees and lets the parser
// decode entities. If parsing fails the regex fallback strips tags and
// unescapes entities instead. Never fails; worst case some markup
// survives in the output.
func HTMLToText(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return StripTags(htmlStr)
	}

	var b strings.Builder
	collectText(&b, doc)

	return tidyText(b.String())
}

// StripTags is the degraded conversion path: remove anything shaped
// like a tag, then decode entities. It does not treat script or style
// content specially.
func StripTags(htmlStr string) string {
	text := tagPattern.ReplaceAllString(htmlStr, "")
	return strings.TrimSpace(stdhtml.UnescapeString(text))
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "head", "style", "script", "title", "meta", "link":
			// Skip entire subtree
			return
		case "br":
			b.WriteByte('\n')
			return
		case "p", "div", "section", "tr", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collectText(b, c)
			}
			b.WriteByte('\n')
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// tidyText trims the edges and collapses runs of blank lines left by
// block elements
func tidyText(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}

// NormalizeNewlines rewrites CRLF and lone CR line endings to LF.
// Idempotent.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
