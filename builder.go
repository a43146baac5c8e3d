package wcx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pthm/wcx/lib/cloud"
)

// Builder defines, exports and imports components. It owns a Store, so
// separate Builders never see each other's definitions.
//
//	b := wcx.New(wcx.WithElements(doc.CustomElements()))
//	if _, err := b.Define(Counter); err != nil { ... }
//	art, err := b.Export(ctx, "click-counter", wcx.ExportOptions{Format: wcx.FormatScript})
type Builder struct {
	store      *Store
	config     Config
	elements   ElementRegistry
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithConfig sets the builder configuration.
func WithConfig(cfg Config) Option {
	return func(b *Builder) { b.config = cfg }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithElements connects the builder to a rendering target's element
// registry. Without one, definitions are stored but never registered.
func WithElements(r ElementRegistry) Option {
	return func(b *Builder) { b.elements = r }
}

// WithHTTPClient sets the client used for cloud and URL requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(b *Builder) { b.httpClient = hc }
}

// WithClock overrides time.Now for Created and export timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithStore shares an existing store instead of creating a new one.
func WithStore(s *Store) Option {
	return func(b *Builder) {
		if s != nil {
			b.store = s
		}
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		store:  NewStore(),
		config: DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store returns the builder's definition store.
func (b *Builder) Store() *Store {
	return b.store
}

// Config returns the builder configuration.
func (b *Builder) Config() Config {
	return b.config
}

// Define validates a definition, registers it when an element registry is
// attached, then stores it. A registration failure stores nothing. Redefining a name replaces the stored record;
// elements already registered under that name keep their original
// definition.
func (b *Builder) Define(def *Definition) (*Record, error) {
	rec, err := Serialize(def, b.now())
	if err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	if b.elements != nil {
		if _, err := b.Register(def); err != nil {
			return nil, err
		}
	}

	if b.store.Put(rec) {
		b.logger.Warn("component redefined; live elements are not updated", "name", rec.Name)
	}
	b.logger.Debug("component defined", "name", rec.Name, "version", rec.Version)
	return rec, nil
}

// Get returns the stored record for name.
func (b *Builder) Get(name string) (*Record, error) {
	rec, ok := b.store.Get(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return rec, nil
}

// ImportOptions controls Import.
type ImportOptions struct {
	// SkipRegister stores the record without registering an element.
	SkipRegister bool
}

// Import resolves a source, reconstructs its definition, stores the
// record and registers the element. Nothing is stored or registered when
// resolution or reconstruction fails.
func (b *Builder) Import(ctx context.Context, src Source, opts ImportOptions) (*Definition, error) {
	rec, err := b.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	def, err := Reconstruct(rec)
	if err != nil {
		return nil, err
	}

	register := !opts.SkipRegister && b.elements != nil
	if register {
		if err := ValidateName(def.Name); err != nil {
			return nil, err
		}
	} else if def.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}

	if register {
		if _, err := b.Register(def); err != nil {
			return nil, err
		}
	}

	if b.store.Put(rec) {
		b.logger.Warn("component replaced by import; live elements are not updated", "name", rec.Name)
	}
	b.logger.Debug("component imported", "name", rec.Name, "version", rec.Version)
	return def, nil
}

// Register adds def to the element registry. Registering a name that is
// already registered is a logged no-op that returns false.
func (b *Builder) Register(def *Definition) (bool, error) {
	if b.elements == nil {
		return false, fmt.Errorf("%w: no element registry attached", ErrConfiguration)
	}
	if err := ValidateName(def.Name); err != nil {
		return false, err
	}
	if b.elements.Get(def.Name) != nil {
		b.logger.Warn("custom element already registered", "name", def.Name)
		return false, nil
	}
	if err := b.elements.Define(def.Name, NewElementClass(def)); err != nil {
		return false, fmt.Errorf("wcx: register %q: %w", def.Name, err)
	}
	b.logger.Debug("custom element registered", "name", def.Name)
	return true, nil
}

// cloudClient returns a store client, or ErrConfiguration when no
// endpoint is configured.
func (b *Builder) cloudClient() (*cloud.Client, error) {
	if b.config.APIEndpoint == "" {
		return nil, fmt.Errorf("%w: apiEndpoint is not set", ErrConfiguration)
	}
	return cloud.New(b.config.APIEndpoint,
		cloud.WithHTTPClient(b.httpClient),
		cloud.WithToken(b.config.APIToken),
	), nil
}

// fetcher returns a client for plain URL fetches.
func (b *Builder) fetcher() *cloud.Client {
	return cloud.New(b.config.APIEndpoint,
		cloud.WithHTTPClient(b.httpClient),
		cloud.WithToken(b.config.APIToken),
	)
}
