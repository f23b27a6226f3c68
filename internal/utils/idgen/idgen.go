// Package idgen produces identifiers for messages, reports and templates.
package idgen

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	MessagePrefix  = "msg_"
	ReportPrefix   = "rpt_"
	TemplatePrefix = "tpl_"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewMessageID returns a msg_* ULID. IDs generated by one process sort in
// creation order, even within the same millisecond.
func NewMessageID() string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return MessagePrefix + strings.ToLower(id.String())
}

// NewMessageIDAfter returns a message id that sorts after prev. Another
// process may have stamped prev with a later clock; the new id then
// continues from prev instead.
func NewMessageIDAfter(prev string) string {
	id := NewMessageID()
	if prev == "" || id > prev {
		return id
	}
	last, err := ParseMessageID(prev)
	if err != nil {
		return id
	}

	next := last
	overflow := true
	for i := len(next) - 1; i >= 6 && overflow; i-- {
		next[i]++
		overflow = next[i] == 0
	}
	if overflow {
		if err := next.SetTime(last.Time() + 1); err != nil {
			return id
		}
	}
	return MessagePrefix + strings.ToLower(next.String())
}

// NewReportID returns a rpt_* UUID.
func NewReportID() string {
	return ReportPrefix + uuid.NewString()
}

// NewTemplateID returns a tpl_* UUID.
func NewTemplateID() string {
	return TemplatePrefix + uuid.NewString()
}

// ParseMessageID strips the msg_ prefix and returns the ULID.
func ParseMessageID(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, MessagePrefix)
	return ulid.ParseStrict(strings.ToUpper(value))
}
