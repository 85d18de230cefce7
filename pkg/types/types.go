package types

// Account is a registered mailbox account. Accounts are managed through the
// admin API and consumed read-only by the fetch engine.
type Account struct {
	ID                  int64  `json:"id"`
	MailID              string `json:"mail_id"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	IMAPServer          string `json:"imap_server"`
	AccessToken         string `json:"access_token"`
	DefaultSenderFilter string `json:"default_sender_filter,omitempty"`
}

// AccountUpdate carries a partial account update. Nil fields are left untouched.
type AccountUpdate struct {
	MailID              *string `json:"mail_id,omitempty"`
	Email               *string `json:"email,omitempty"`
	Password            *string `json:"password,omitempty"`
	IMAPServer          *string `json:"imap_server,omitempty"`
	AccessToken         *string `json:"access_token,omitempty"`
	DefaultSenderFilter *string `json:"default_sender_filter,omitempty"`
}

// MessageSummary is the decoded header view of one message.
type MessageSummary struct {
	ID      uint32 `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
}

// Snapshot is the cached result of the last successful fetch for an account:
// the filter set that produced it, the exact identifier window it covered,
// and the summaries returned. At most one snapshot exists per account.
type Snapshot struct {
	AccountID  int64            `json:"account_id"`
	Filters    []string         `json:"filters"`
	MessageIDs []uint32         `json:"message_ids"`
	Summaries  []MessageSummary `json:"summaries"`
}
