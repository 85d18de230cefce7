package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/brandon/inboxd/pkg/types"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an email address is already registered.
var ErrDuplicateEmail = errors.New("email address already registered")

// CreateAccount inserts a new account. A missing mail id or access token is
// generated. Returns ErrDuplicateEmail if the email address is already taken.
func (s *Store) CreateAccount(acc *types.Account) (*types.Account, error) {
	existing, err := s.GetAccountByEmail(acc.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	if acc.MailID == "" {
		acc.MailID = uuid.NewString()
	}
	if acc.AccessToken == "" {
		token, err := newAccessToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate access token: %w", err)
		}
		acc.AccessToken = token
	}

	query := `
		INSERT INTO accounts (mail_id, email, password, imap_server, access_token, default_sender_filter)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query, acc.MailID, acc.Email, acc.Password, acc.IMAPServer, acc.AccessToken, nullableString(acc.DefaultSenderFilter))
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account ID: %w", err)
	}
	acc.ID = id

	s.logger.WithField("mail_id", acc.MailID).Info("Account created")
	return acc, nil
}

// GetAccountByID retrieves an account by its numeric ID
func (s *Store) GetAccountByID(id int64) (*types.Account, error) {
	return s.scanAccount(s.db.QueryRow(accountSelect+" WHERE id = ?", id))
}

// GetAccountByMailID retrieves an account by its public mail id
func (s *Store) GetAccountByMailID(mailID string) (*types.Account, error) {
	return s.scanAccount(s.db.QueryRow(accountSelect+" WHERE mail_id = ?", mailID))
}

// GetAccountByEmail retrieves an account by email address
func (s *Store) GetAccountByEmail(email string) (*types.Account, error) {
	return s.scanAccount(s.db.QueryRow(accountSelect+" WHERE email = ?", email))
}

// ListAccounts returns accounts ordered by ID
func (s *Store) ListAccounts(skip, limit int) ([]types.Account, error) {
	rows, err := s.db.Query(accountSelect+" ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []types.Account{}
	for rows.Next() {
		var acc types.Account
		var filter sql.NullString

		err := rows.Scan(&acc.ID, &acc.MailID, &acc.Email, &acc.Password, &acc.IMAPServer, &acc.AccessToken, &filter)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acc.DefaultSenderFilter = filter.String
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

// UpdateAccount applies a partial update and returns the updated account.
// Returns ErrNotFound if the account does not exist.
func (s *Store) UpdateAccount(id int64, upd types.AccountUpdate) (*types.Account, error) {
	var sets []string
	var args []interface{}

	if upd.MailID != nil {
		sets = append(sets, "mail_id = ?")
		args = append(args, *upd.MailID)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Password != nil {
		sets = append(sets, "password = ?")
		args = append(args, *upd.Password)
	}
	if upd.IMAPServer != nil {
		sets = append(sets, "imap_server = ?")
		args = append(args, *upd.IMAPServer)
	}
	if upd.AccessToken != nil {
		sets = append(sets, "access_token = ?")
		args = append(args, *upd.AccessToken)
	}
	if upd.DefaultSenderFilter != nil {
		sets = append(sets, "default_sender_filter = ?")
		args = append(args, nullableString(*upd.DefaultSenderFilter))
	}

	if len(sets) == 0 {
		return s.GetAccountByID(id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := "UPDATE accounts SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetAccountByID(id)
}

// DeleteAccount removes an account and, via cascade, its fetch snapshot.
// Returns ErrNotFound if the account does not exist.
func (s *Store) DeleteAccount(id int64) error {
	result, err := s.db.Exec("DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.WithField("account_id", id).Info("Account deleted")
	return nil
}

const accountSelect = `
	SELECT id, mail_id, email, password, imap_server, access_token, default_sender_filter
	FROM accounts
`

func (s *Store) scanAccount(row *sql.Row) (*types.Account, error) {
	var acc types.Account
	var filter sql.NullString

	err := row.Scan(&acc.ID, &acc.MailID, &acc.Email, &acc.Password, &acc.IMAPServer, &acc.AccessToken, &filter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	acc.DefaultSenderFilter = filter.String
	return &acc, nil
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

// newAccessToken returns a URL-safe random token
func newAccessToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
