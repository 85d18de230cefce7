package mail

import (
	"errors"
	"slices"
	"time"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"

	"github.com/brandon/inboxd/internal/config"
	"github.com/brandon/inboxd/pkg/types"
)

// Mailbox is the subset of an open, INBOX-selected session the engine uses.
type Mailbox interface {
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	FetchHeaders(ids []uint32) (map[uint32][]byte, error)
	Close()
}

// SnapshotStore persists at most one fetch snapshot per account.
type SnapshotStore interface {
	ReadSnapshot(accountID int64) (*types.Snapshot, error)
	WriteSnapshot(accountID int64, filters []string, ids []uint32, summaries []types.MessageSummary) error
}

// Result is the successful outcome of a fetch: either a list of summaries or
// a soft "no matches" notice. The two are mutually exclusive.
type Result struct {
	Summaries []types.MessageSummary
	Notice    string
}

// Engine coordinates one fetch: resolve filters, open a session, search,
// consult the snapshot cache, bulk-fetch and decode headers, store the
// snapshot. Each fetch is a single sequential unit of work; concurrent
// fetches for the same account are not serialized and the snapshot upsert is
// last-writer-wins.
type Engine struct {
	snapshots SnapshotStore
	timeout   time.Duration
	limit     int
	logger    *logrus.Logger

	// dial is swappable for tests.
	dial func(account *types.Account, timeout time.Duration, logger *logrus.Logger) (Mailbox, error)
}

// NewEngine creates a fetch engine
func NewEngine(snapshots SnapshotStore, cfg *config.Config, logger *logrus.Logger) *Engine {
	return &Engine{
		snapshots: snapshots,
		timeout:   cfg.IMAPTimeout,
		limit:     cfg.FetchLimit,
		logger:    logger,
		dial:      dialAccount,
	}
}

// FetchSummaries returns summaries of the most recent messages matching the
// account's sender filter (or the request override). Hard failures carry a
// *Error with their failure kind.
func (e *Engine) FetchSummaries(account *types.Account, senderOverride string) (*Result, error) {
	filters, usedOverride := ResolveFilters(senderOverride, account.DefaultSenderFilter)
	if len(filters) == 0 {
		return nil, newError(FailConfiguration, errors.New("no sender filter specified"))
	}
	query := BuildQuery(filters)

	box, err := e.dial(account, e.timeout, e.logger)
	if err != nil {
		return nil, err
	}
	defer box.Close()

	ids, err := box.Search(query.Criteria())
	if err != nil {
		if isTimeout(err) {
			return nil, newError(FailTimeout, err)
		}
		if isTransport(err) {
			return nil, newError(FailFetch, err)
		}
		// Only a server status rejection is a soft empty result.
		e.logger.WithError(err).WithField("account", account.MailID).Warn("Search rejected by server")
		return &Result{Notice: "No emails found"}, nil
	}

	window := recentWindow(ids, e.limit)
	if len(window) == 0 {
		return &Result{Notice: "No emails found"}, nil
	}

	if cached := e.checkSnapshot(account, filters, usedOverride, window); cached != nil {
		e.logger.WithFields(logrus.Fields{
			"account": account.MailID,
			"count":   len(cached),
		}).Debug("Snapshot hit, skipping header fetch")
		return &Result{Summaries: cached}, nil
	}

	records, err := box.FetchHeaders(window)
	if err != nil {
		if isTimeout(err) {
			return nil, newError(FailTimeout, err)
		}
		return nil, newError(FailFetch, err)
	}

	summaries := make([]types.MessageSummary, 0, len(window))
	for _, id := range window {
		raw, ok := records[id]
		if !ok {
			e.logger.WithFields(logrus.Fields{
				"account": account.MailID,
				"id":      id,
			}).Warn("Identifier missing from fetch response")
			continue
		}
		summary, err := decodeHeaderRecord(id, raw)
		if err != nil {
			e.logger.WithError(err).WithField("id", id).Warn("Undecodable header record")
		}
		summaries = append(summaries, summary)
	}

	if err := e.snapshots.WriteSnapshot(account.ID, filters, window, summaries); err != nil {
		e.logger.WithError(err).WithField("account", account.MailID).Warn("Failed to store fetch snapshot")
	}

	return &Result{Summaries: summaries}, nil
}

// checkSnapshot returns the stored summaries when the snapshot is still
// valid: the identifier window must match exactly (same members, same order)
// and the stored filter set must be compatible with the current one. A
// snapshot written before filter tracking (no recorded filters) is honored
// only for requests that relied on the account default.
func (e *Engine) checkSnapshot(account *types.Account, filters []string, usedOverride bool, window []uint32) []types.MessageSummary {
	snap, err := e.snapshots.ReadSnapshot(account.ID)
	if err != nil {
		e.logger.WithError(err).WithField("account", account.MailID).Warn("Failed to read fetch snapshot")
		return nil
	}
	if snap == nil {
		return nil
	}

	if !slices.Equal(snap.MessageIDs, window) {
		return nil
	}
	if len(snap.Filters) == 0 {
		if usedOverride {
			return nil
		}
	} else if !slices.Equal(snap.Filters, filters) {
		return nil
	}

	return snap.Summaries
}

// recentWindow keeps the last limit identifiers, newest first.
func recentWindow(ids []uint32, limit int) []uint32 {
	if limit <= 0 || len(ids) == 0 {
		return nil
	}
	if len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	window := make([]uint32, len(ids))
	for i, id := range ids {
		window[len(ids)-1-i] = id
	}
	return window
}

// dialAccount opens and selects a real IMAP session for the account.
func dialAccount(account *types.Account, timeout time.Duration, logger *logrus.Logger) (Mailbox, error) {
	session, err := OpenSession(account.IMAPServer, account.Email, account.Password, timeout, logger)
	if err != nil {
		return nil, err
	}
	if err := session.SelectInbox(); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}
