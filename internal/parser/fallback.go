package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"spendbot/internal/port"
)

// DefaultBackoff applies when a 429 answer carries no usable Retry-After.
const DefaultBackoff = time.Minute

// ErrAllRateLimited is wrapped by the error returned when every provider is backing off.
var ErrAllRateLimited = errors.New("all parsers rate limited")

// RateLimitError is returned for a 429 answer. RetryAfter is how long the provider asked
// to be left alone.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("parser %s: rate limited for %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError creates a RateLimitError; a non-positive wait becomes DefaultBackoff.
func NewRateLimitError(provider string, err error, wait time.Duration) *RateLimitError {
	if wait <= 0 {
		wait = DefaultBackoff
	}
	return &RateLimitError{Provider: provider, RetryAfter: wait, Err: err}
}

// RateLimited wraps err for a 429 response from provider, honouring its Retry-After.
func RateLimited(provider string, resp *http.Response, err error) *RateLimitError {
	return NewRateLimitError(provider, err, RetryAfter(resp.Header, time.Now()))
}

// RetryAfter reads Retry-After in delta-seconds or HTTP-date form. Zero means the header
// is absent, malformed or already in the past.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// link is one provider in the chain together with its rate-limit backoff window.
type link struct {
	name   string
	parser port.DocumentParser

	mu        sync.RWMutex
	blockedTo time.Time
}

// blocked reports whether the provider is still inside a backoff window at now.
func (l *link) blocked(now time.Time) (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blockedTo, now.Before(l.blockedTo)
}

func (l *link) backOff(until time.Time) {
	l.mu.Lock()
	l.blockedTo = until
	l.mu.Unlock()
}

// FallbackParser asks providers in order and returns the first answer. A provider that
// answered 429 is not asked again until its Retry-After has elapsed.
type FallbackParser struct {
	links []*link
	log   *zap.Logger
	now   func() time.Time
}

// NewFallbackParser creates a FallbackParser. names[i] labels parsers[i] in logs and errors.
func NewFallbackParser(parsers []port.DocumentParser, names []string, log *zap.Logger) *FallbackParser {
	links := make([]*link, len(parsers))
	for i, p := range parsers {
		name := fmt.Sprintf("provider-%d", i)
		if i < len(names) {
			name = names[i]
		}
		links[i] = &link{name: name, parser: p}
	}
	return &FallbackParser{links: links, log: log, now: time.Now}
}

// Parse implements port.DocumentParser.
func (f *FallbackParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	now := f.now()
	var (
		lastErr   error
		otherErrs int
		wakeUp    time.Time
	)
	noteWake := func(t time.Time) {
		if wakeUp.IsZero() || t.Before(wakeUp) {
			wakeUp = t
		}
	}

	for _, l := range f.links {
		if until, blocked := l.blocked(now); blocked {
			f.log.Debug("parser: provider backing off",
				zap.String("provider", l.name), zap.Time("until", until))
			noteWake(until)
			continue
		}

		out, err := l.parser.Parse(ctx, input)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("parsing cancelled: %w", ctx.Err())
		}
		f.log.Warn("parser: provider failed", zap.String("provider", l.name), zap.Error(err))
		lastErr = err

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			otherErrs++
			continue
		}
		until := now.Add(rl.RetryAfter)
		l.backOff(until)
		noteWake(until)
	}

	if otherErrs > 0 {
		return nil, fmt.Errorf("all parsers failed: %w", lastErr)
	}
	wait := wakeUp.Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	return nil, NewRateLimitError("all", ErrAllRateLimited, wait)
}
