package unity

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
	"u3d/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type StatusClass int

const (
	StatusOther StatusClass = iota
	StatusSuccess
	StatusRedirect
)

func (c StatusClass) String() string {
	switch c {
	case StatusSuccess:
		return "success"
	case StatusRedirect:
		return "redirect"
	default:
		return "other"
	}
}

func classify(statusCode int) StatusClass {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return StatusSuccess
	case statusCode >= 300 && statusCode < 400:
		return StatusRedirect
	default:
		return StatusOther
	}
}

// Page is the raw result of a single GET.
type Page struct {
	URL        string
	StatusCode int
	Class      StatusClass
	Header     http.Header
	Body       string
}

var errNoLocation = errors.New("redirect without a location")

// Location returns the redirect target resolved against the page's URL.
func (p Page) Location() (string, error) {
	location := p.Header.Get("Location")
	if location == "" {
		return "", errNoLocation
	}
	base, err := url.Parse(p.URL)
	if err != nil {
		return "", err
	}
	resolved, err := base.Parse(location)
	if err != nil {
		return "", err
	}
	return resolved.String(), nil
}

// CookiePairs returns the raw name=value part of every Set-Cookie header,
// attributes dropped. Values are kept byte for byte, quotes included.
func (p Page) CookiePairs() []string {
	var pairs []string
	for _, line := range p.Header.Values("Set-Cookie") {
		pair, _, _ := strings.Cut(line, ";")
		pair = strings.TrimSpace(pair)
		name, _, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// Fetcher performs exactly one GET per call, it never follows redirects and
// never retries.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, endpoint, cookie string) (Page, error)
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type FetcherOptions struct {
	Timeout          time.Duration
	UserAgent        string
	CloudflareBypass bool

	// RequestsPerSecond paces requests, zero or less disables pacing. Config
	// files use a negative value since zero there means the default.
	RequestsPerSecond float64
}

func DefaultFetcherOptions() FetcherOptions {
	return FetcherOptions{
		Timeout:           30 * time.Second,
		UserAgent:         defaultUserAgent,
		RequestsPerSecond: 4,
	}
}

type HTTPFetcher struct {
	http *resty.Client
}

func NewHTTPFetcher(opts FetcherOptions, tel telemetry.API) *HTTPFetcher {
	tel = telemetry.NewScopedAPI("unity_fetcher", tel)

	httpClient := resty.New()
	// cookies are only what the session negotiation hands us
	httpClient.SetCookieJar(nil)
	httpClient.SetRetryCount(0)
	httpClient.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetcherOptions().Timeout
	}
	httpClient.SetTimeout(opts.Timeout)

	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	httpClient.SetHeader("user-agent", opts.UserAgent)

	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, "u3d/internal/scrapers/unity")

	return &HTTPFetcher{http: httpClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint, cookie string) (Page, error) {
	req := f.http.R().
		SetContext(ctx).
		SetHeader("Connection", "keep-alive")
	if cookie != "" {
		req.SetHeader("Cookie", cookie)
	}

	res, err := req.Get(endpoint)
	if err != nil {
		return Page{}, &NetworkError{URL: endpoint, Err: err}
	}

	return Page{
		URL:        endpoint,
		StatusCode: res.StatusCode(),
		Class:      classify(res.StatusCode()),
		Header:     res.Header(),
		Body:       string(res.Body()),
	}, nil
}
