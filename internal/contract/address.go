package contract

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidAddress is returned when a string is not a usable address or
// when an identifier is requested from an address that does not end in one.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a resource: a scheme, an authority and a list of path
// segments. The zero value is an empty address.
//
// Address is a value type. Methods that derive a new address never share
// the segment slice with the receiver.
type Address struct {
	scheme    string
	authority string
	segments  []string
}

// NewAddress builds an address from its parts. Empty segments are dropped.
func NewAddress(scheme, authority string, segments ...string) Address {
	return Address{
		scheme:    scheme,
		authority: authority,
		segments:  compact(segments),
	}
}

// ParseAddress parses s as an absolute, hierarchical URI such as
// "content://com.example.android.books/books/3".
// Trailing slashes and repeated slashes are ignored.
func ParseAddress(s string) (Address, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if u.Scheme == "" || u.Opaque != "" || u.Host == "" {
		return Address{}, fmt.Errorf("%w: %q: scheme and authority are required", ErrInvalidAddress, s)
	}
	return NewAddress(u.Scheme, u.Host, strings.Split(u.Path, "/")...), nil
}

// MustParseAddress is like ParseAddress but panics on error.
// Intended for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Scheme returns the URI scheme.
func (a Address) Scheme() string { return a.scheme }

// Authority returns the URI authority.
func (a Address) Authority() string { return a.authority }

// Segments returns a copy of the path segments.
func (a Address) Segments() []string {
	out := make([]string, len(a.segments))
	copy(out, a.segments)
	return out
}

// Path returns the slash-joined path, always starting with "/".
func (a Address) Path() string {
	return "/" + strings.Join(a.segments, "/")
}

// IsZero reports whether a is the empty address.
func (a Address) IsZero() bool {
	return a.scheme == "" && a.authority == "" && len(a.segments) == 0
}

// String renders the address as a URI.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString(a.scheme)
	b.WriteString("://")
	b.WriteString(a.authority)
	for _, seg := range a.segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

// URL returns the address as a *url.URL.
func (a Address) URL() *url.URL {
	return &url.URL{Scheme: a.scheme, Host: a.authority, Path: a.Path()}
}

// Append returns a new address with segment added to the path.
func (a Address) Append(segment string) Address {
	segs := make([]string, 0, len(a.segments)+1)
	segs = append(segs, a.segments...)
	return NewAddress(a.scheme, a.authority, append(segs, segment)...)
}

// WithID returns the record address for id under a.
func (a Address) WithID(id int64) Address {
	return a.Append(strconv.FormatInt(id, 10))
}

// ID parses the trailing segment as a record identifier.
func (a Address) ID() (int64, error) {
	if len(a.segments) == 0 {
		return 0, fmt.Errorf("%w: %s has no identifier", ErrInvalidAddress, a)
	}
	last := a.segments[len(a.segments)-1]
	id, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: identifier %q is not an integer", ErrInvalidAddress, a, last)
	}
	return id, nil
}

// Parent returns the address with the last segment removed.
// ok is false when a has no segments.
func (a Address) Parent() (parent Address, ok bool) {
	if len(a.segments) == 0 {
		return Address{}, false
	}
	return NewAddress(a.scheme, a.authority, a.segments[:len(a.segments)-1]...), true
}

// Equal reports whether a and b address the same resource.
func (a Address) Equal(b Address) bool {
	if a.scheme != b.scheme || a.authority != b.authority || len(a.segments) != len(b.segments) {
		return false
	}
	for i := range a.segments {
		if a.segments[i] != b.segments[i] {
			return false
		}
	}
	return true
}

// IsUnder reports whether a is a strict descendant of ancestor.
func (a Address) IsUnder(ancestor Address) bool {
	if a.scheme != ancestor.scheme || a.authority != ancestor.authority {
		return false
	}
	if len(a.segments) <= len(ancestor.segments) {
		return false
	}
	for i, seg := range ancestor.segments {
		if a.segments[i] != seg {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func compact(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
