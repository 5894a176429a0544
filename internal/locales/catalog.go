package locales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/text/language"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

var (
	ErrUnknownLocale   = errors.New("locales: locale is not in the catalog or inactive")
	ErrMalformedLocale = errors.New("locales: locale is not a valid language tag")
	ErrNoDefaultLocale = errors.New("locales: catalog has no default locale")
)

// Catalog answers which locale codes may be written.
type Catalog struct {
	repo   Repository
	logger interfaces.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(logger interfaces.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCatalog returns a catalog backed by repo.
func NewCatalog(repo Repository, opts ...CatalogOption) *Catalog {
	c := &Catalog{repo: repo, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repository returns the backing repository.
func (c *Catalog) Repository() Repository { return c.repo }

// Validate checks that code is a well formed tag with an active catalog
// entry. The canonical form of the tag is tried when the raw code is absent.
func (c *Catalog) Validate(ctx context.Context, code string) error {
	trimmed := strings.TrimSpace(code)
	tag, err := language.Parse(trimmed)
	if err != nil {
		return goerrors.Wrap(ErrMalformedLocale, goerrors.CategoryValidation, fmt.Sprintf("locale %q is malformed", code)).
			WithTextCode("MALFORMED_LOCALE")
	}

	loc, err := c.lookup(ctx, trimmed, tag.String())
	if err != nil {
		return err
	}
	if loc == nil || !loc.IsActive {
		c.logger.Debug("locales.validate.rejected", "locale", trimmed)
		return goerrors.Wrap(ErrUnknownLocale, goerrors.CategoryValidation, fmt.Sprintf("locale %q is not available", code)).
			WithTextCode("UNKNOWN_LOCALE")
	}
	return nil
}

// Default returns the catalog entry flagged as default.
func (c *Catalog) Default(ctx context.Context) (*Locale, error) {
	all, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, loc := range all {
		if loc.IsDefault && loc.IsActive {
			return loc, nil
		}
	}
	return nil, ErrNoDefaultLocale
}

// Codes returns the active codes in catalog order.
func (c *Catalog) Codes(ctx context.Context) ([]string, error) {
	all, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(all))
	for _, loc := range all {
		if loc.IsActive {
			codes = append(codes, loc.Code)
		}
	}
	return codes, nil
}

func (c *Catalog) lookup(ctx context.Context, codes ...string) (*Locale, error) {
	for _, code := range codes {
		loc, err := c.repo.GetByCode(ctx, code)
		if err == nil {
			return loc, nil
		}
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return nil, nil
}
