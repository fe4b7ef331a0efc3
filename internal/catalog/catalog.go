// Package catalog is a typed client over the record store for the screens
// that list and edit books.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/books/internal/contract"
	"github.com/roach88/books/internal/notify"
	"github.com/roach88/books/internal/provider"
	"github.com/roach88/books/internal/querysql"
	"github.com/roach88/books/internal/values"
)

// ErrNotFound is returned by Get for an identifier with no record.
var ErrNotFound = errors.New("book not found")

// Book is one record of the books table. A nil Quantity is stored as NULL.
type Book struct {
	ID            int64  `json:"_id"`
	Name          string `json:"product_name"`
	Price         int64  `json:"price"`
	Quantity      *int64 `json:"quanity"`
	SupplierName  string `json:"supplier_name"`
	SupplierPhone string `json:"supplier_phone_number"`
}

// Values returns the book's fields keyed by column, without the identifier.
func (b *Book) Values() values.Values {
	vs := values.New()
	vs.PutString(contract.ColumnProductName, b.Name)
	vs.PutInt(contract.ColumnPrice, b.Price)
	if b.Quantity != nil {
		vs.PutInt(contract.ColumnQuantity, *b.Quantity)
	} else {
		vs.PutNull(contract.ColumnQuantity)
	}
	vs.PutString(contract.ColumnSupplierName, b.SupplierName)
	vs.PutString(contract.ColumnSupplierPhone, b.SupplierPhone)
	return vs
}

// FromValues builds a Book from a result row. NULL text columns become "".
func FromValues(row values.Values) Book {
	var b Book
	b.ID, _ = row.AsInt(contract.ColumnID)
	b.Name, _ = row.AsString(contract.ColumnProductName)
	b.Price, _ = row.AsInt(contract.ColumnPrice)
	if q, ok := row.AsInt(contract.ColumnQuantity); ok {
		b.Quantity = &q
	}
	b.SupplierName, _ = row.AsString(contract.ColumnSupplierName)
	b.SupplierPhone, _ = row.AsString(contract.ColumnSupplierPhone)
	return b
}

// Catalog reads and writes books through a provider.
type Catalog struct {
	provider *provider.Provider
	logger   *slog.Logger
}

// New returns a Catalog. A nil logger means slog.Default().
func New(p *provider.Provider, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{provider: p, logger: logger}
}

// All returns every book ordered by identifier.
func (c *Catalog) All(ctx context.Context) ([]Book, error) {
	rs, err := c.provider.List(ctx, c.provider.CollectionAddress(), provider.ListOptions{
		Fields:    contract.Columns(),
		SortOrder: contract.ColumnID + " ASC",
	})
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	books := make([]Book, 0, rs.Len())
	for _, row := range rs.Rows {
		books = append(books, FromValues(row))
	}
	return books, nil
}

// Count returns the number of books.
func (c *Catalog) Count(ctx context.Context) (int64, error) {
	return c.provider.Count(ctx, c.provider.CollectionAddress(), querysql.Filter{})
}

// Get returns the book with identifier id.
func (c *Catalog) Get(ctx context.Context, id int64) (Book, error) {
	rs, err := c.provider.List(ctx, c.provider.CollectionAddress().WithID(id), provider.ListOptions{
		Fields: contract.Columns(),
	})
	if err != nil {
		return Book{}, err
	}
	defer rs.Close()

	if rs.Len() == 0 {
		return Book{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return FromValues(rs.Rows[0]), nil
}

// Save inserts b when b.ID is zero, setting b.ID, and updates the existing
// record otherwise. Updating a missing record is ErrNotFound.
func (c *Catalog) Save(ctx context.Context, b *Book) error {
	if b.ID == 0 {
		addr, err := c.provider.Insert(ctx, c.provider.CollectionAddress(), b.Values())
		if err != nil {
			return err
		}
		id, err := addr.ID()
		if err != nil {
			return err
		}
		b.ID = id
		return nil
	}

	n, err := c.provider.Update(ctx, c.provider.CollectionAddress().WithID(b.ID), b.Values(), querysql.Filter{})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, b.ID)
	}
	return nil
}

// Delete removes the book with identifier id. It reports whether a record
// was removed.
func (c *Catalog) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := c.provider.Delete(ctx, c.provider.CollectionAddress().WithID(id), querysql.Filter{})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAll removes every book and returns how many were removed.
func (c *Catalog) DeleteAll(ctx context.Context) (int64, error) {
	n, err := c.provider.Delete(ctx, c.provider.CollectionAddress(), querysql.Filter{})
	if err != nil {
		return 0, err
	}
	c.logger.Info("rows deleted from book database", "rows", n)
	return n, nil
}

// SampleBook is the record inserted by Seed.
func SampleBook() Book {
	qty := int64(5)
	return Book{
		Name:          "Algorithm",
		Price:         10,
		Quantity:      &qty,
		SupplierName:  "MIT",
		SupplierPhone: "408-498-8675",
	}
}

// Seed inserts SampleBook and returns the new record's address.
func (c *Catalog) Seed(ctx context.Context) (contract.Address, error) {
	b := SampleBook()
	return c.provider.Insert(ctx, c.provider.CollectionAddress(), b.Values())
}

// Watch delivers every change to the collection or any book in it until
// ctx is done.
func (c *Catalog) Watch(ctx context.Context) <-chan notify.Change {
	return c.provider.Bus().Watch(ctx, c.provider.CollectionAddress(), true)
}
