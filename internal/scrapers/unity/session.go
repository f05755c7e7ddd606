package unity

import (
	"context"
	"fmt"
	"strings"
)

type SessionState int

const (
	StateInitial SessionState = iota
	StateAwaitingAPIRedirect
	StateAwaitingForumRedirect
	StateAuthenticated
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateAwaitingAPIRedirect:
		return "awaiting-api-redirect"
	case StateAwaitingForumRedirect:
		return "awaiting-forum-redirect"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// cookieHeader accumulates name=value pairs across hops.
type cookieHeader struct {
	pairs []string
}

func (h *cookieHeader) add(pairs []string) {
	h.pairs = append(h.pairs, pairs...)
}

func (h cookieHeader) String() string {
	return strings.Join(h.pairs, "; ")
}

type sessionState struct {
	state   SessionState
	next    string
	cookies cookieHeader
	page    Page
	fetcher Fetcher
}

func (s *sessionState) fail(page Page, reason string) error {
	at := s.state
	s.state = StateFailed
	return &AuthenticationError{
		State:      at,
		URL:        page.URL,
		StatusCode: page.StatusCode,
		Reason:     reason,
	}
}

// follow moves to the page's redirect target, a redirect that does not say
// where to go is not a shape the forum is expected to answer with.
func (s *sessionState) follow(page Page, to SessionState) error {
	location, err := page.Location()
	if err != nil {
		return s.fail(page, fmt.Sprintf("follow redirect: %v", err))
	}
	s.next = location
	s.state = to
	return nil
}

func (s *sessionState) initial(ctx context.Context) error {
	page, err := s.fetcher.Fetch(ctx, s.next, "")
	if err != nil {
		return err
	}
	switch page.Class {
	case StatusSuccess:
		s.page = page
		s.state = StateAuthenticated
		return nil
	case StatusRedirect:
		s.cookies.add(page.CookiePairs())
		return s.follow(page, StateAwaitingAPIRedirect)
	default:
		return s.fail(page, fmt.Sprintf("request failed with status %d", page.StatusCode))
	}
}

// awaitingAPIRedirect hits the register API, it hands out credentials so no
// cookie is sent.
func (s *sessionState) awaitingAPIRedirect(ctx context.Context) error {
	page, err := s.fetcher.Fetch(ctx, s.next, "")
	if err != nil {
		return err
	}
	if page.Class != StatusRedirect {
		return s.fail(page, "unexpected result")
	}
	return s.follow(page, StateAwaitingForumRedirect)
}

func (s *sessionState) awaitingForumRedirect(ctx context.Context) error {
	page, err := s.fetcher.Fetch(ctx, s.next, s.cookies.String())
	if err != nil {
		return err
	}
	if page.Class != StatusRedirect {
		return s.fail(page, "unable to establish a session")
	}
	s.cookies.add(page.CookiePairs())
	location, err := page.Location()
	if err != nil {
		return s.fail(page, fmt.Sprintf("follow redirect: %v", err))
	}

	final, err := s.fetcher.Fetch(ctx, location, s.cookies.String())
	if err != nil {
		return err
	}
	if final.Class != StatusSuccess {
		s.state = StateFailed
		return &NetworkError{URL: final.URL, StatusCode: final.StatusCode}
	}
	s.page = final
	s.state = StateAuthenticated
	return nil
}

// negotiateSession walks the forum's redirect and cookie exchange and returns
// the body of the authenticated page. The first non-conforming response
// abandons the whole negotiation.
func negotiateSession(ctx context.Context, fetcher Fetcher, indexURL string) (string, error) {
	s := &sessionState{
		state:   StateInitial,
		next:    indexURL,
		fetcher: fetcher,
	}

	for {
		var err error
		switch s.state {
		case StateInitial:
			err = s.initial(ctx)
		case StateAwaitingAPIRedirect:
			err = s.awaitingAPIRedirect(ctx)
		case StateAwaitingForumRedirect:
			err = s.awaitingForumRedirect(ctx)
		case StateAuthenticated:
			return s.page.Body, nil
		default:
			return "", fmt.Errorf("session negotiation in unexpected state %s", s.state)
		}
		if err != nil {
			s.state = StateFailed
			return "", err
		}
	}
}
