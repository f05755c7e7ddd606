package unity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

type fetchCall struct {
	URL    string
	Cookie string
}

func okPage(body string) Page {
	return Page{StatusCode: http.StatusOK, Class: StatusSuccess, Header: http.Header{}, Body: body}
}

func statusPage(code int) Page {
	return Page{StatusCode: code, Class: classify(code), Header: http.Header{}}
}

func redirectPage(location string, cookies ...string) Page {
	header := http.Header{}
	if location != "" {
		header.Set("Location", location)
	}
	for _, c := range cookies {
		header.Add("Set-Cookie", c)
	}
	return Page{StatusCode: http.StatusFound, Class: StatusRedirect, Header: header}
}

type scriptedResponse struct {
	page Page
	err  error
}

// scriptedFetcher answers calls in order, regardless of the url asked for.
type scriptedFetcher struct {
	script []scriptedResponse
	calls  []fetchCall
}

func (f *scriptedFetcher) Fetch(_ context.Context, endpoint, cookie string) (Page, error) {
	f.calls = append(f.calls, fetchCall{URL: endpoint, Cookie: cookie})
	i := len(f.calls) - 1
	if i >= len(f.script) {
		return Page{}, fmt.Errorf("unexpected call %d to %s", i, endpoint)
	}
	res := f.script[i]
	if res.err != nil {
		return Page{}, res.err
	}
	res.page.URL = endpoint
	return res.page, nil
}

// routeFetcher answers by url, unknown urls are a 404.
type routeFetcher struct {
	mu     sync.Mutex
	routes map[string]Page
	errs   map[string]error
	calls  []fetchCall
}

func newRouteFetcher() *routeFetcher {
	return &routeFetcher{
		routes: map[string]Page{},
		errs:   map[string]error{},
	}
}

func (f *routeFetcher) Fetch(_ context.Context, endpoint, cookie string) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fetchCall{URL: endpoint, Cookie: cookie})
	if err, ok := f.errs[endpoint]; ok {
		return Page{}, err
	}
	page, ok := f.routes[endpoint]
	if !ok {
		page = statusPage(http.StatusNotFound)
	}
	page.URL = endpoint
	return page, nil
}

func (f *routeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type notice struct {
	Kind    NoticeKind
	Message string
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []notice
}

func (r *noticeRecorder) Notice(kind NoticeKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{Kind: kind, Message: message})
}

func (r *noticeRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Message
	}
	return out
}
