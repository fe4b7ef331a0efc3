package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/notify"
	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/store"
	"github.com/roach88/books/internal/values"
)

// Provider serves List, Insert, Update, Delete and ResolveType over the
// books table. It is the only component that touches the store.
type Provider struct {
	helper *store.Helper
	routes *Routes
	bus    *notify.Bus
	logger *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithBus publishes changes on bus instead of a private one.
func WithBus(bus *notify.Bus) Option {
	return func(p *Provider) {
		p.bus = bus
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// New creates a Provider over the lazily opened database in helper,
// resolving addresses with routes.
func New(helper *store.Helper, routes *Routes, opts ...Option) *Provider {
	p := &Provider{
		helper: helper,
		routes: routes,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bus == nil {
		p.bus = notify.NewBus()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Bus returns the notification bus changes are published on.
func (p *Provider) Bus() *notify.Bus {
	return p.bus
}

// Routes returns the routing table.
func (p *Provider) Routes() *Routes {
	return p.routes
}

// CollectionAddress returns the collection address for the provider's
// authority.
func (p *Provider) CollectionAddress() contract.Address {
	return contract.NewAddress(contract.Scheme, p.routes.Authority(), contract.PathBooks)
}

// Close releases the database handle.
func (p *Provider) Close() error {
	return p.helper.Close()
}

// ListOptions narrows and orders a List.
type ListOptions struct {
	// Fields is the projection. Empty selects every column.
	Fields []string
	// Filter restricts the rows. Ignored for record addresses.
	Filter querysql.Filter
	// SortOrder is an ORDER BY fragment, e.g. "product_name ASC".
	SortOrder string
}

// List returns the records at addr. For a record address the filter is
// replaced by an identifier match. A malformed filter or sort order fails
// in the store.
func (p *Provider) List(ctx context.Context, addr contract.Address, opts ListOptions) (*ResultSet, error) {
	filter, err := p.resolveFilter(addr, opts.Filter)
	if err != nil {
		return nil, err
	}

	s, err := p.helper.Store(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rows, err := s.Query(ctx, querysql.Select{
		Table:   contract.TableBooks,
		Columns: opts.Fields,
		Filter:  filter,
		OrderBy: opts.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", addr, err)
	}

	return &ResultSet{
		Address: addr,
		Columns: rows.Columns,
		Rows:    rows.Rows,
		bus:     p.bus,
	}, nil
}

// Count returns how many records are at addr.
func (p *Provider) Count(ctx context.Context, addr contract.Address, filter querysql.Filter) (int64, error) {
	filter, err := p.resolveFilter(addr, filter)
	if err != nil {
		return 0, err
	}

	s, err := p.helper.Store(ctx)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}

	n, err := s.Count(ctx, contract.TableBooks, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", addr, err)
	}
	return n, nil
}

// Insert adds a record under the collection address and returns the new
// record's address. vals is validated first: the product name is required
// and a non-null quantity must be a non-negative integer. Any failure of the
// insert statement itself, such as a constraint violation or an unknown
// column, is ErrNoRecordCreated unless ctx was canceled.
func (p *Provider) Insert(ctx context.Context, addr contract.Address, vals values.Values) (contract.Address, error) {
	match, _ := p.routes.Match(addr)
	p.logger.Debug("insert", "address", addr.String(), "match", match.String())
	if match != MatchBooks {
		return contract.Address{}, fmt.Errorf("%w for %s", ErrUnsupportedAddress, addr)
	}

	if err := validateInsert(vals); err != nil {
		return contract.Address{}, err
	}

	s, err := p.helper.Store(ctx)
	if err != nil {
		return contract.Address{}, fmt.Errorf("open store: %w", err)
	}

	id, err := s.Insert(ctx, contract.TableBooks, vals)
	if err != nil {
		if ctx.Err() != nil {
			return contract.Address{}, fmt.Errorf("insert %s: %w", addr, err)
		}
		p.logger.Error("failed to insert row",
			"address", addr.String(),
			"constraint", store.IsConstraint(err),
			"error", err,
		)
		return contract.Address{}, fmt.Errorf("%w for %s: %w", ErrNoRecordCreated, addr, err)
	}

	p.bus.Notify(addr)
	return addr.WithID(id), nil
}

// Update applies a partial set of fields to the records at addr and returns
// how many changed. Only keys present in vals are validated. Empty vals
// returns 0 without touching the store.
func (p *Provider) Update(ctx context.Context, addr contract.Address, vals values.Values, filter querysql.Filter) (int64, error) {
	filter, err := p.resolveFilter(addr, filter)
	if err != nil {
		return 0, err
	}

	if err := validateUpdate(vals); err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, nil
	}

	s, err := p.helper.Store(ctx)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}

	n, err := s.Update(ctx, contract.TableBooks, vals, filter)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", addr, err)
	}

	if n > 0 {
		p.bus.Notify(addr)
	}
	return n, nil
}

// Delete removes the records at addr and returns how many were removed.
// On the collection address an empty filter removes every record.
func (p *Provider) Delete(ctx context.Context, addr contract.Address, filter querysql.Filter) (int64, error) {
	filter, err := p.resolveFilter(addr, filter)
	if err != nil {
		return 0, err
	}

	s, err := p.helper.Store(ctx)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}

	n, err := s.Delete(ctx, contract.TableBooks, filter)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", addr, err)
	}

	if n > 0 {
		p.bus.Notify(addr)
	}
	return n, nil
}

// ResolveType returns the result kind of addr: the collection type for the
// collection address and the item type for a record address.
func (p *Provider) ResolveType(addr contract.Address) (string, error) {
	match, _ := p.routes.Match(addr)
	switch match {
	case MatchBooks:
		return contract.CursorDirBaseType + "/" + p.routes.Authority() + "/" + contract.PathBooks, nil
	case MatchBookID:
		return contract.CursorItemBaseType + "/" + p.routes.Authority() + "/" + contract.PathBooks, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, addr)
	}
}

// resolveFilter routes addr and returns the filter to apply: the caller's
// filter for the collection, an identifier match for a record.
func (p *Provider) resolveFilter(addr contract.Address, filter querysql.Filter) (querysql.Filter, error) {
	match, id := p.routes.Match(addr)
	p.logger.Debug("match address", "address", addr.String(), "match", match.String())

	switch match {
	case MatchBooks:
		return filter, nil
	case MatchBookID:
		return querysql.Equals(contract.ColumnID, id), nil
	default:
		return querysql.Filter{}, fmt.Errorf("%w: %s", ErrUnroutableAddress, addr)
	}
}
