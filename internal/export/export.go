package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	gmailwrap "github.com/ajramos/gmail-web/internal/gmail"
	"github.com/ajramos/gmail-web/internal/render"
	gmailapi "google.golang.org/api/gmail/v1"
)

const (
	// DefaultMaxRows replaces an absent or unparseable max parameter
	DefaultMaxRows = 200

	// HardMaxRows caps an export regardless of what was requested
	HardMaxRows = 2000

	// pageSize is the largest page requested from the provider
	pageSize = 100
)

// Columns is the fixed CSV header row
var Columns = []string{
	"id", "threadId", "date", "from", "to", "cc", "bcc",
	"subject", "labels", "snippet", "body_text",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MessageSource is the narrow provider surface the exporter drives
type MessageSource interface {
	ListMessagesPage(ctx context.Context, query string, maxResults int64, pageToken string) ([]*gmailapi.Message, string, error)
	GetMessage(ctx context.Context, id string) (*gmailapi.Message, error)
}

// Exporter streams INBOX messages as CSV rows
type Exporter struct {
	Source MessageSource
	Log    *slog.Logger
}

// NewExporter creates an exporter over the given source
func NewExporter(source MessageSource, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{Source: source, Log: log}
}

// ParseMaxRows interprets the caller-supplied max parameter. An empty
// or unparseable value falls back to the default; the result is always
// clamped to [1, HardMaxRows].
func ParseMaxRows(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = DefaultMaxRows
	}
	return ClampMaxRows(n)
}

// ClampMaxRows bounds a row cap to [1, HardMaxRows]
func ClampMaxRows(n int) int {
	if n < 1 {
		return 1
	}
	if n > HardMaxRows {
		return HardMaxRows
	}
	return n
}

// Export writes a BOM-prefixed CSV of up to maxRows INBOX messages
// matching the optional query. Messages that fail to fetch are skipped
// with a warning and do not count against the cap; a failed page listing
// aborts the export. Rows appear in provider order.
func (e *Exporter) Export(ctx context.Context, w io.Writer, query string, maxRows int) error {
	maxRows = ClampMaxRows(maxRows)

	// BOM so spreadsheet tools open the file as UTF-8
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	fetched := 0
	pageToken := ""
	for fetched < maxRows {
		batch := maxRows - fetched
		if batch > pageSize {
			batch = pageSize
		}

		refs, next, err := e.Source.ListMessagesPage(ctx, query, int64(batch), pageToken)
		if err != nil {
			return fmt.Errorf("list export page: %w", err)
		}
		if len(refs) == 0 {
			break
		}

		for _, ref := range refs {
			if fetched >= maxRows {
				break
			}

			msg, err := e.Source.GetMessage(ctx, ref.Id)
			if err != nil {
				e.Log.Warn("skipping message in export", "id", ref.Id, "error", err)
				continue
			}

			if err := cw.Write(exportRow(msg)); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			fetched++
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	cw.Flush()
	return cw.Error()
}

// exportRow builds the 11-field record for one message. Extraction
// never fails; a malformed message degrades to empty fields.
func exportRow(msg *gmailapi.Message) []string {
	headers := gmailwrap.MessageHeaders(msg)
	body := gmailwrap.ExtractBody(msg.Payload)

	text := body.Text
	if text == "" {
		text = render.HTMLToText(body.HTML)
	}

	return []string{
		msg.Id,
		msg.ThreadId,
		headers.Get("Date"),
		headers.Get("From"),
		headers.Get("To"),
		headers.Get("Cc"),
		headers.Get("Bcc"),
		headers.Get("Subject"),
		strings.Join(msg.LabelIds, ","),
		msg.Snippet,
		render.NormalizeNewlines(text),
	}
}
