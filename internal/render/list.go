package render

import (
	gmailwrap "github.com/ajramos/gmail-web/internal/gmail"
	gmailapi "google.golang.org/api/gmail/v1"
)

// NoSubjectPlaceholder is shown for messages without a Subject header
const NoSubjectPlaceholder = "(no subject)"

// Row is the inbox listing view-model for one message
type Row struct {
	ID      string
	From    string
	Subject string
	Date    string
	Snippet string
}

// AssembleRow converts message metadata into a listing row. Absent
// headers fall back to empty strings, except Subject which gets a
// placeholder; the snippet is taken verbatim from the provider.
func AssembleRow(msg *gmailapi.Message) Row {
	if msg == nil {
		return Row{Subject: NoSubjectPlaceholder}
	}

	headers := gmailwrap.MessageHeaders(msg)

	subject := headers.Get("Subject")
	if subject == "" {
		subject = NoSubjectPlaceholder
	}

	return Row{
		ID:      msg.Id,
		From:    headers.Get("From"),
		Subject: subject,
		Date:    headers.Get("Date"),
		Snippet: msg.Snippet,
	}
}
