// Package report renders the human-readable backend inventory.
package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/backendhub/internal/backend"
	"github.com/zjrosen/backendhub/internal/cachemanager"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/resource"
)

// BaselineDomain is listed for every backend, whether or not the backend
// reports it.
const BaselineDomain = "runtime"

const cacheKey = "report"

// Reporter renders the inventory of a backend set.
type Reporter struct {
	backends backend.View
	platform backend.Backend
	cacheTTL time.Duration
	cache    *cachemanager.ReadThroughCache[string, string, backend.View]
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithCacheTTL keeps a rendered report for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Reporter) {
		r.cacheTTL = ttl
	}
}

// New creates a Reporter over backends. platform is named in the footer.
func New(backends backend.View, platform backend.Backend, opts ...Option) *Reporter {
	r := &Reporter{backends: backends, platform: platform}
	for _, opt := range opts {
		opt(r)
	}
	manager := cachemanager.NewInMemoryCacheManager[string, string](
		"report", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	r.cache = cachemanager.NewReadThroughCache[string, string, backend.View](manager, r.render, r.cacheTTL <= 0)
	return r
}

// Report returns the inventory text.
func (r *Reporter) Report(ctx context.Context) string {
	text, _ := r.cache.Get(ctx, cacheKey, r.backends, r.cacheTTL)
	return text
}

// Invalidate forces the next Report to render again.
func (r *Reporter) Invalidate(ctx context.Context) {
	_ = r.cache.Invalidate(ctx, cacheKey)
}

func (r *Reporter) render(_ context.Context, view backend.View) (string, error) {
	backends := view.Backends()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d backends\n", len(backends))
	for _, b := range backends {
		fmt.Fprintf(&sb, "    ++ %s: default domain = %s, %d resources\n", b.ID(), b.DefaultDomain(), b.ResourceCount())
		sb.WriteString("        Domains:\n")

		domains := b.Domains()
		for _, d := range domains {
			writeDomain(&sb, b, d)
		}
		if !slices.Contains(domains, BaselineDomain) {
			writeDomain(&sb, b, BaselineDomain)
		}
	}
	sb.WriteString("\n")

	platform := "<none>"
	if r.platform != nil {
		platform = r.platform.ID()
	}
	fmt.Fprintf(&sb, "Platform backend: %s\n", platform)

	log.Debug(log.CatReport, "rendered report", "backends", len(backends))
	return sb.String(), nil
}

func writeDomain(sb *strings.Builder, b backend.Backend, domain string) {
	fmt.Fprintf(sb, "         == %s\n", domain)

	names, err := query(b, domain)
	if err != nil {
		log.ErrorErr(log.CatReport, "listing domain failed", err, "backend", b.ID(), "domain", domain)
		fmt.Fprintf(sb, "              INTERNAL ERROR: %v\n", err)
		return
	}
	for _, n := range names {
		fmt.Fprintf(sb, "              %s\n", n.CanonicalKeyPropertyList())
	}
}

func query(b backend.Backend, domain string) ([]resource.Name, error) {
	pattern, err := resource.Pattern(domain)
	if err != nil {
		return nil, err
	}
	return b.Query(pattern)
}
