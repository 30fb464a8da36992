package plancatalog

import (
	"context"
	"log/slog"
	"maps"
	"strings"
)

// Entry holds the billing metadata for a single plan. Amount is expressed
// in the smallest unit of the gateway's currency.
type Entry struct {
	Slug      string `yaml:"slug"`
	Amount    int64  `yaml:"amount"`
	OrderName string `yaml:"order_name"`
}

// Source is an optional dynamic backend override for plan metadata, keyed
// by slug. A source returning (Entry{}, nil) signals "no override".
type Source interface {
	Lookup(ctx context.Context, slug string) (Entry, error)
}

// Gate resolves plan metadata with fallback-then-override precedence.
type Gate struct {
	fallback map[string]Entry
	source   Source
	log      *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithSource attaches a dynamic backend override source.
func WithSource(src Source) Option {
	return func(g *Gate) { g.source = src }
}

// WithLogger attaches a logger for lookup diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGate creates a Gate over the given static fallback entries.
func NewGate(fallback map[string]Entry, opts ...Option) *Gate {
	g := &Gate{
		fallback: maps.Clone(fallback),
		log:      slog.Default(),
	}
	if g.fallback == nil {
		g.fallback = make(map[string]Entry)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve returns the amount and order name for slug. The backend override
// wins only when it yields a positive amount; a failing or empty backend
// falls back to the static table. ErrAmountUnknown is returned when neither
// side can produce an amount.
func (g *Gate) Resolve(ctx context.Context, slug string) (Entry, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return Entry{}, ErrEmptySlug
	}

	fallback, hasFallback := g.fallback[slug]

	if g.source != nil {
		override, err := g.source.Lookup(ctx, slug)
		if err != nil {
			// Backend lookup failures degrade to the static table.
			g.log.WarnContext(ctx, "plan catalog lookup failed",
				slog.String("slug", slug),
				slog.Any("error", err))
		} else if override.Amount > 0 {
			if override.Slug == "" {
				override.Slug = slug
			}
			if override.OrderName == "" {
				override.OrderName = fallback.OrderName
			}
			return override, nil
		}
	}

	if hasFallback && fallback.Amount > 0 {
		return fallback, nil
	}
	return Entry{}, ErrAmountUnknown
}
