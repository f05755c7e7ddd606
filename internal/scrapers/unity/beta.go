package unity

import (
	"context"
	"fmt"
	"u3d/internal/catalog"
)

const report_beta_resolve = "beta.resolve"

// resolveBetas reads the beta index for tokens, then extracts each beta's own
// page with the download pattern. A beta page that cannot be fetched is
// skipped, the index itself failing aborts the call.
func (d *Discoverer) resolveBetas(ctx context.Context, pattern PagePattern) (catalog.Catalog, error) {
	index, err := d.fetchPage(ctx, d.endpoints.BetaIndex)
	if err != nil {
		return nil, fmt.Errorf("fetch beta index: %w", err)
	}

	tokens := ExtractTokens(index.Body, d.patterns.BetaToken)
	d.tel.ReportDebug(report_beta_resolve, "tokens", len(tokens))

	out := catalog.Catalog{}
	for _, token := range tokens {
		endpoint := d.endpoints.BetaPageURL(token)
		page, err := d.fetchPage(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.tel.ReportWarning(
				report_beta_resolve,
				fmt.Errorf("skip beta %s: %w", token, err),
				endpoint,
			)
			continue
		}
		for version, url := range ExtractCatalog(page.Body, pattern) {
			out[version] = url
		}
	}
	return out, nil
}
