package gmail

import "google.golang.org/api/gmail/v1"

// HeaderIndex maps header names to their first-seen values. Names are
// kept case-sensitive as delivered by the provider.
type HeaderIndex map[string]string

// NewHeaderIndex builds an index from an ordered header sequence.
// Duplicate names keep the first value; entries without a name are skipped.
func NewHeaderIndex(headers []*gmail.MessagePartHeader) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for _, h := range headers {
		if h == nil || h.Name == "" {
			continue
		}
		if _, ok := idx[h.Name]; !ok {
			idx[h.Name] = h.Value
		}
	}
	return idx
}

// MessageHeaders builds an index from a message's payload headers
func MessageHeaders(msg *gmail.Message) HeaderIndex {
	if msg == nil || msg.Payload == nil {
		return HeaderIndex{}
	}
	return NewHeaderIndex(msg.Payload.Headers)
}

// Get returns the indexed value for name, or "" when absent
func (idx HeaderIndex) Get(name string) string {
	return idx[name]
}
