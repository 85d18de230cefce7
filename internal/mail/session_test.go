package mail

import (
	"errors"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsurePort(t *testing.T) {
	assert.Equal(t, "imap.x.com:993", ensurePort("imap.x.com"))
	assert.Equal(t, "imap.x.com:143", ensurePort("imap.x.com:143"))
}

func TestClassifyConnect(t *testing.T) {
	timeoutErr := &net.OpError{Op: "dial", Err: os.ErrDeadlineExceeded}
	assert.Equal(t, FailTimeout, KindOf(classifyConnect(timeoutErr)))
	assert.Equal(t, FailTimeout, KindOf(classifyConnect(os.ErrDeadlineExceeded)))
	assert.Equal(t, FailConnection, KindOf(classifyConnect(errors.New("login refused"))))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, isTimeout(os.ErrDeadlineExceeded))
	assert.True(t, isTimeout(&net.OpError{Op: "read", Err: os.ErrDeadlineExceeded}))
	assert.False(t, isTimeout(errors.New("connection refused")))
	assert.False(t, isTimeout(nil))
}
