package mail

import (
	"crypto/tls"
	"io"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

// Session wraps one authenticated IMAP connection. Every blocking operation
// on the connection is bounded by the timeout given at open time.
type Session struct {
	client *client.Client
	logger *logrus.Logger
}

// OpenSession connects to the IMAP server over TLS and logs in. The timeout
// bounds the connect itself and every subsequent command on the connection.
func OpenSession(server, email, password string, timeout time.Duration, logger *logrus.Logger) (*Session, error) {
	addr := ensurePort(server)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, newError(FailConnection, err)
	}

	dialer := &net.Dialer{Timeout: timeout}
	cl, err := client.DialWithDialerTLS(dialer, addr, &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		return nil, classifyConnect(err)
	}

	// A connect-only timeout is not enough: idle reads after connect must
	// also be bounded.
	cl.Timeout = timeout

	if err := cl.Login(email, password); err != nil {
		if lerr := cl.Logout(); lerr != nil {
			logger.WithError(lerr).Debug("Logout after failed login")
		}
		return nil, classifyConnect(err)
	}

	return &Session{client: cl, logger: logger}, nil
}

// SelectInbox selects INBOX read-only as a separate bounded step.
func (s *Session) SelectInbox() error {
	if _, err := s.client.Select("INBOX", true); err != nil {
		if isTimeout(err) {
			return newError(FailTimeout, err)
		}
		return newError(FailFetch, err)
	}
	return nil
}

// Search runs the search command and returns matching message identifiers in
// ascending server order.
func (s *Session) Search(criteria *imap.SearchCriteria) ([]uint32, error) {
	return s.client.Search(criteria)
}

// FetchHeaders retrieves the header blocks for all given identifiers in a
// single bulk fetch, keyed by identifier.
func (s *Session) FetchHeaders(ids []uint32) (map[uint32][]byte, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(ids...)

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)

	go func() {
		done <- s.client.Fetch(seqSet, items, messages)
	}()

	records := make(map[uint32][]byte, len(ids))
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			s.logger.WithField("id", msg.SeqNum).Warn("Fetch response without header section")
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			s.logger.WithError(err).WithField("id", msg.SeqNum).Warn("Failed to read header literal")
			continue
		}
		records[msg.SeqNum] = raw
	}

	if err := <-done; err != nil {
		return nil, err
	}
	return records, nil
}

// Close logs out of the server. It is safe to call on every exit path; errors
// are logged and swallowed so they can never mask the primary result.
func (s *Session) Close() {
	if err := s.client.Logout(); err != nil {
		s.logger.WithError(err).Warn("Failed to log out of IMAP server")
	}
}

func classifyConnect(err error) error {
	if isTimeout(err) {
		return newError(FailTimeout, err)
	}
	return newError(FailConnection, err)
}

// ensurePort appends the implicit IMAPS port when the address has none.
func ensurePort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "993")
}
