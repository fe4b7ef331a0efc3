package contract

// Content authority and paths.
const (
	// Scheme is the URI scheme of every address.
	Scheme = "content"

	// Authority names the whole provider, like a domain name names a site.
	Authority = "com.example.android.books"

	// PathBooks is the path segment of the books collection.
	PathBooks = "books"
)

// Table and column names of the books table.
const (
	TableBooks = "books"

	ColumnID            = "_id"
	ColumnProductName   = "product_name"
	ColumnPrice         = "price"
	ColumnQuantity      = "quanity"
	ColumnSupplierName  = "supplier_name"
	ColumnSupplierPhone = "supplier_phone_number"
)

// Result-kind markers, used as the first part of the MIME-like type strings.
const (
	CursorDirBaseType  = "vnd.android.cursor.dir"
	CursorItemBaseType = "vnd.android.cursor.item"
)

// CollectionType is the result kind of a list of books.
const CollectionType = CursorDirBaseType + "/" + Authority + "/" + PathBooks

// ItemType is the result kind of a single book.
const ItemType = CursorItemBaseType + "/" + Authority + "/" + PathBooks

var (
	// BaseAddress is the root every address is built from.
	BaseAddress = NewAddress(Scheme, Authority)

	// BooksAddress addresses the whole books collection.
	BooksAddress = BaseAddress.Append(PathBooks)
)

// Columns returns every column of the books table in table order.
func Columns() []string {
	return []string{
		ColumnID,
		ColumnProductName,
		ColumnPrice,
		ColumnQuantity,
		ColumnSupplierName,
		ColumnSupplierPhone,
	}
}
