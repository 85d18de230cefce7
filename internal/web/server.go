package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/brandon/inboxd/internal/config"
	"github.com/brandon/inboxd/internal/mail"
	"github.com/brandon/inboxd/internal/store"
	"github.com/brandon/inboxd/pkg/types"
)

// Fetcher produces inbox summaries for an account.
type Fetcher interface {
	FetchSummaries(account *types.Account, senderOverride string) (*mail.Result, error)
}

// AccountStore is the persistence surface the handlers use.
type AccountStore interface {
	CreateAccount(acc *types.Account) (*types.Account, error)
	GetAccountByMailID(mailID string) (*types.Account, error)
	GetAccountByEmail(email string) (*types.Account, error)
	ListAccounts(skip, limit int) ([]types.Account, error)
	UpdateAccount(id int64, upd types.AccountUpdate) (*types.Account, error)
	DeleteAccount(id int64) error
}

// Server exposes the mail fetch endpoint and the admin account API
type Server struct {
	config   *config.Config
	accounts AccountStore
	fetcher  Fetcher
	logger   *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, accounts AccountStore, fetcher Fetcher, logger *logrus.Logger) *Server {
	return &Server{
		config:   cfg,
		accounts: accounts,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Handler returns the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/mail/messages", s.handleMessages)

	mux.HandleFunc("POST /admin/accounts", s.requireAdmin(s.handleCreateAccount))
	mux.HandleFunc("GET /admin/accounts", s.requireAdmin(s.handleListAccounts))
	mux.HandleFunc("PUT /admin/accounts/{id}", s.requireAdmin(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /admin/accounts/{id}", s.requireAdmin(s.handleDeleteAccount))

	return mux
}

// handleMessages serves the inbox summary view. It always answers with one of
// three shapes: a summary list, {"message": ...} for a soft empty result, or
// {"error": ...} with a generic message for a hard failure.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mailID := q.Get("mail_id")
	token := q.Get("token")
	sender := q.Get("sender")

	account, err := s.accounts.GetAccountByMailID(mailID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Mail ID not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to look up account")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(account.AccessToken), []byte(token)) != 1 {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Invalid token"})
		return
	}

	result, err := s.fetcher.FetchSummaries(account, sender)
	if err != nil {
		s.logger.WithError(err).WithField("mail_id", mailID).Error("Fetch failed")
		writeJSON(w, http.StatusOK, map[string]string{"error": failureMessage(mail.KindOf(err))})
		return
	}

	if result.Notice != "" {
		writeJSON(w, http.StatusOK, map[string]string{"message": result.Notice})
		return
	}

	summaries := result.Summaries
	if summaries == nil {
		summaries = []types.MessageSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// failureMessage maps a failure kind to its user-safe message. Transport
// detail never reaches the client.
func failureMessage(kind mail.FailureKind) string {
	switch kind {
	case mail.FailTimeout:
		return "Mail server timed out"
	case mail.FailConnection:
		return "Connection failed"
	case mail.FailConfiguration:
		return "No sender filter specified"
	default:
		return "Error fetching mail"
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req types.Account
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" || req.IMAPServer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "email, password and imap_server are required"})
		return
	}

	req.ID = 0
	account, err := s.accounts.CreateAccount(&req)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email address already registered"})
			return
		}
		s.logger.WithError(err).Error("Failed to create account")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	accounts, err := s.accounts.ListAccounts(skip, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list accounts")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid account id"})
		return
	}

	var upd types.AccountUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body"})
		return
	}

	// An email change must not collide with another account.
	if upd.Email != nil {
		existing, err := s.accounts.GetAccountByEmail(*upd.Email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.WithError(err).Error("Failed to check email collision")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
			return
		}
		if existing != nil && existing.ID != id {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email address already registered"})
			return
		}
	}

	account, err := s.accounts.UpdateAccount(id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Account not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to update account")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid account id"})
		return
	}

	if err := s.accounts.DeleteAccount(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Account not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to delete account")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

// requireAdmin guards a handler with HTTP basic auth
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.AdminPassword)) == 1

		if !ok || !userOK || !passOK {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
