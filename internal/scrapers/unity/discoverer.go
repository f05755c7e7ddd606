package unity

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"u3d/internal/catalog"
	"u3d/internal/components/assert"
	"u3d/internal/components/telemetry"
	"u3d/internal/platform"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	report_discoverer_discover = "discoverer.discover"
	report_discoverer_versions = "discoverer.versions"
	report_linux_anchor        = "linux.anchor"
)

type NoticeKind int

const (
	NoticeMessage NoticeKind = iota
	NoticeSuccess
	NoticeImportant
)

// Notifier receives the progress messages a user would want to see while
// discovery runs.
type Notifier interface {
	Notice(kind NoticeKind, message string)
}

type NotifierFunc func(kind NoticeKind, message string)

func (f NotifierFunc) Notice(kind NoticeKind, message string) {
	f(kind, message)
}

type nopNotifier struct{}

func (nopNotifier) Notice(NoticeKind, string) {}

type Options struct {
	// Endpoints that are left empty use DefaultEndpoints.
	Endpoints Endpoints

	// Patterns left unset use the matching DefaultPatterns entry.
	Patterns PatternSet
	Notifier Notifier

	// Concurrent fetches the stable, patch and beta pages of mac and windows
	// in parallel.
	Concurrent bool
}

// Discoverer lists the Unity versions that can be downloaded for an
// operating system. A Discoverer holds no per-call state and can be used
// from multiple goroutines.
type Discoverer struct {
	fetcher    Fetcher
	endpoints  Endpoints
	patterns   PatternSet
	notifier   Notifier
	concurrent bool

	tel    telemetry.API
	tracer trace.Tracer
}

func NewDiscoverer(fetcher Fetcher, opts Options, tel telemetry.API) *Discoverer {
	assert.NotNil(fetcher, "fetcher")
	assert.NotNil(tel, "telemetry")

	var notifier Notifier = nopNotifier{}
	if opts.Notifier != nil {
		notifier = opts.Notifier
	}

	return &Discoverer{
		fetcher:    fetcher,
		endpoints:  opts.Endpoints.withDefaults(),
		patterns:   opts.Patterns.withDefaults(),
		notifier:   notifier,
		concurrent: opts.Concurrent,
		tel:        telemetry.NewScopedAPI("unity_scraper", tel),
		tracer:     otel.Tracer("u3d/internal/scrapers/unity"),
	}
}

// Discover returns the catalog of versions available for os. An unknown os
// fails before any request is made, and no partial catalog is returned on
// error.
func (d *Discoverer) Discover(ctx context.Context, os platform.OS) (catalog.Catalog, error) {
	if err := os.Validate(); err != nil {
		return nil, err
	}

	ctx, span := d.tracer.Start(ctx, "Discover", trace.WithAttributes(
		attribute.String("os", os.String()),
	))
	defer span.End()

	var (
		result catalog.Catalog
		err    error
	)
	switch os {
	case platform.Linux:
		result, err = d.discoverLinux(ctx)
	case platform.Mac, platform.Windows:
		var pattern PagePattern
		pattern, err = d.patterns.ForOS(os)
		if err == nil {
			result, err = d.discoverChannels(ctx, pattern)
		}
	default:
		err = &platform.UnsupportedError{Value: os.String()}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		d.tel.ReportBroken(report_discoverer_discover, err, os.String())
		return nil, fmt.Errorf("discover %s versions: %w", os, err)
	}

	span.SetAttributes(attribute.Int("versions", len(result)))
	d.tel.ReportCount(report_discoverer_versions, int64(len(result)))
	return result, nil
}

func (d *Discoverer) fetchPage(ctx context.Context, endpoint string) (Page, error) {
	page, err := d.fetcher.Fetch(ctx, endpoint, "")
	if err != nil {
		return Page{}, err
	}
	if page.Class != StatusSuccess {
		return Page{}, &NetworkError{URL: endpoint, StatusCode: page.StatusCode}
	}
	return page, nil
}

func (d *Discoverer) fetchCatalog(ctx context.Context, endpoint string, pattern PagePattern) (catalog.Catalog, error) {
	page, err := d.fetchPage(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return ExtractCatalog(page.Body, pattern), nil
}

type channel struct {
	loading string
	found   string
	fetch   func(ctx context.Context) (catalog.Catalog, error)
}

func (d *Discoverer) channels(pattern PagePattern) []channel {
	return []channel{
		{
			loading: "Loading Unity releases",
			found:   "Found %d releases.",
			fetch: func(ctx context.Context) (catalog.Catalog, error) {
				return d.fetchCatalog(ctx, d.endpoints.Archive, pattern)
			},
		},
		{
			loading: "Loading Unity patch releases",
			found:   "Found %d patch releases.",
			fetch: func(ctx context.Context) (catalog.Catalog, error) {
				return d.fetchCatalog(ctx, d.endpoints.Patches, pattern)
			},
		},
		{
			loading: "Loading Unity beta releases",
			found:   "Found %d beta releases.",
			fetch: func(ctx context.Context) (catalog.Catalog, error) {
				return d.resolveBetas(ctx, pattern)
			},
		},
	}
}

func (d *Discoverer) reportFound(ch channel, result catalog.Catalog) {
	if len(result) > 0 {
		d.notifier.Notice(NoticeSuccess, fmt.Sprintf(ch.found, len(result)))
	}
}

// discoverChannels reads the stable, patch and beta sources and merges them
// in that order regardless of which finished first.
func (d *Discoverer) discoverChannels(ctx context.Context, pattern PagePattern) (catalog.Catalog, error) {
	channels := d.channels(pattern)
	results := make([]catalog.Catalog, len(channels))

	if !d.concurrent {
		for i, ch := range channels {
			d.notifier.Notice(NoticeMessage, ch.loading)
			result, err := ch.fetch(ctx)
			if err != nil {
				return nil, err
			}
			d.reportFound(ch, result)
			results[i] = result
		}
		return catalog.Merge(results...), nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		d.notifier.Notice(NoticeMessage, ch.loading)
		group.Go(func() error {
			result, err := ch.fetch(groupCtx)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	for i, ch := range channels {
		d.reportFound(ch, results[i])
	}
	return catalog.Merge(results...), nil
}

var inlineWhitespace = regexp.MustCompile(`[ \t]+`)

// anchorLines returns the lines of the page that hold a link, with runs of
// spaces and tabs collapsed.
func anchorLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(inlineWhitespace.ReplaceAllString(line, " "))
		if strings.Contains(line, "<a href=") {
			out = append(out, line)
		}
	}
	return out
}

func (d *Discoverer) discoverLinux(ctx context.Context) (catalog.Catalog, error) {
	d.notifier.Notice(NoticeMessage, "Loading Unity releases")

	body, err := negotiateSession(ctx, d.fetcher, d.endpoints.LinuxForum)
	if err != nil {
		return nil, fmt.Errorf("linux forum session: %w", err)
	}

	for _, line := range anchorLines(body) {
		d.tel.ReportDebug(report_linux_anchor, line)
	}

	result := ExtractCatalog(body, d.patterns.Linux)
	if len(result) == 0 {
		d.notifier.Notice(NoticeImportant, "Found no releases")
	} else {
		d.notifier.Notice(NoticeSuccess, fmt.Sprintf("Found %d releases.", len(result)))
	}
	return result, nil
}
