package store

// Schema contains SQL schema definitions for the store
const Schema = `
-- Accounts table
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    mail_id TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    imap_server TEXT NOT NULL,
    access_token TEXT NOT NULL,
    default_sender_filter TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One fetch snapshot per account. The filter set, identifier window and
-- summaries are stored as JSON blobs.
CREATE TABLE IF NOT EXISTS fetch_cache (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL UNIQUE,
    filters TEXT NOT NULL,
    message_ids TEXT NOT NULL,
    summaries TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

-- Create indexes for faster lookups
CREATE INDEX IF NOT EXISTS idx_accounts_mail_id ON accounts(mail_id);
CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
`
