package mail

import (
	"bytes"
	netmail "net/mail"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/brandon/inboxd/pkg/types"
)

const dateLayout = "2006/01/02 15:04:05"

// Timestamps are rendered in a fixed UTC+8 offset regardless of the zone the
// message was sent from.
var displayZone = time.FixedZone("UTC+8", 8*60*60)

// decodeHeaderRecord turns one raw header block into a summary. Decoding is
// best-effort: a failure degrades individual fields and is reported through
// the returned error for logging, but a summary is always produced.
func decodeHeaderRecord(id uint32, raw []byte) (types.MessageSummary, error) {
	summary := types.MessageSummary{ID: id, Subject: "Unknown"}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return summary, err
	}

	// GetHeader decodes RFC 2047 encoded-words using the declared charset,
	// falling back to best-effort text on a broken encoding. An absent
	// Subject header keeps the "Unknown" fallback.
	if _, ok := env.Root.Header["Subject"]; ok {
		summary.Subject = env.GetHeader("Subject")
	}

	summary.From = env.Root.Header.Get("From")
	summary.Date = formatDate(env.Root.Header.Get("Date"))

	return summary, nil
}

// formatDate parses an RFC 5322 date and renders it in the fixed display
// zone. An unparseable date falls back to the raw header text.
func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := netmail.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.In(displayZone).Format(dateLayout)
}
