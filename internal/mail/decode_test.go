package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func headerRecord(lines ...string) []byte {
	var raw []byte
	for _, l := range lines {
		raw = append(raw, l...)
		raw = append(raw, '\r', '\n')
	}
	return append(raw, '\r', '\n')
}

func TestDecodeHeaderRecord(t *testing.T) {
	t.Run("plain headers", func(t *testing.T) {
		raw := headerRecord(
			"Subject: Weekly report",
			"From: Alice <a@x.com>",
			"Date: Mon, 2 Jan 2006 15:04:05 +0800",
		)
		sum, err := decodeHeaderRecord(7, raw)
		assert.NoError(t, err)
		assert.Equal(t, uint32(7), sum.ID)
		assert.Equal(t, "Weekly report", sum.Subject)
		assert.Equal(t, "Alice <a@x.com>", sum.From)
		assert.Equal(t, "2006/01/02 15:04:05", sum.Date)
	})

	t.Run("encoded subject is decoded", func(t *testing.T) {
		raw := headerRecord(
			"Subject: =?utf-8?q?Hello_World?=",
			"From: a@x.com",
		)
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "Hello World", sum.Subject)
	})

	t.Run("latin1 subject uses its declared charset", func(t *testing.T) {
		raw := headerRecord(
			"Subject: =?ISO-8859-1?Q?caf=E9?=",
			"From: a@x.com",
		)
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "café", sum.Subject)
	})

	t.Run("missing subject falls back to Unknown", func(t *testing.T) {
		raw := headerRecord(
			"From: a@x.com",
			"Date: Mon, 2 Jan 2006 15:04:05 +0800",
		)
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "Unknown", sum.Subject)
	})

	t.Run("sender header stays raw", func(t *testing.T) {
		raw := headerRecord(
			"Subject: hi",
			"From: =?utf-8?q?Bob?= <bob@x.com>",
		)
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "=?utf-8?q?Bob?= <bob@x.com>", sum.From)
	})

	t.Run("missing sender is empty", func(t *testing.T) {
		raw := headerRecord("Subject: hi")
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "", sum.From)
	})

	t.Run("date converts to fixed UTC+8", func(t *testing.T) {
		raw := headerRecord(
			"Subject: hi",
			"From: a@x.com",
			"Date: Mon, 2 Jan 2006 15:04:05 -0700",
		)
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "2006/01/03 06:04:05", sum.Date)
	})

	t.Run("unparseable date falls back to raw text", func(t *testing.T) {
		raw := headerRecord(
			"Subject: hi",
			"From: a@x.com",
			"Date: sometime last week",
		)
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "sometime last week", sum.Date)
	})

	t.Run("missing date is empty", func(t *testing.T) {
		raw := headerRecord("Subject: hi", "From: a@x.com")
		sum, err := decodeHeaderRecord(1, raw)
		assert.NoError(t, err)
		assert.Equal(t, "", sum.Date)
	})

	t.Run("unreadable record degrades, never panics", func(t *testing.T) {
		sum, _ := decodeHeaderRecord(9, nil)
		assert.Equal(t, uint32(9), sum.ID)
		assert.Equal(t, "Unknown", sum.Subject)
	})
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(""))
	assert.Equal(t, "garbage", formatDate("garbage"))
	assert.Equal(t, "2006/01/02 23:04:05", formatDate("Mon, 2 Jan 2006 15:04:05 +0000"))
}
