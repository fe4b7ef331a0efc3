package provider

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roach88/books/internal/contract"
)

// Match identifies which address shape a route table recognized.
type Match int

const (
	// NoMatch means the address has no recognized shape.
	NoMatch Match = iota
	// MatchBooks is the collection address.
	MatchBooks
	// MatchBookID is a record address.
	MatchBookID
)

// String returns the route name.
func (m Match) String() string {
	switch m {
	case MatchBooks:
		return "books"
	case MatchBookID:
		return "book_id"
	default:
		return "none"
	}
}

// Routes maps addresses to Match codes. It is built once and never modified,
// so one table may be shared by any number of providers.
type Routes struct {
	authority string
	router    *mux.Router
}

// NewRoutes builds the routing table for addresses under authority.
func NewRoutes(authority string) *Routes {
	r := mux.NewRouter()
	r.Schemes(contract.Scheme).
		Host(authority).
		Path("/" + contract.PathBooks).
		Name(MatchBooks.String())
	r.Schemes(contract.Scheme).
		Host(authority).
		Path("/" + contract.PathBooks + "/{id:[0-9]+}").
		Name(MatchBookID.String())

	return &Routes{authority: authority, router: r}
}

// Authority returns the authority the table routes for.
func (r *Routes) Authority() string {
	return r.authority
}

// Match resolves addr. For MatchBookID the record identifier is returned
// too. Identifiers that overflow int64 do not match.
func (r *Routes) Match(addr contract.Address) (Match, int64) {
	if addr.IsZero() {
		return NoMatch, 0
	}

	req := &http.Request{
		Method: http.MethodGet,
		URL:    addr.URL(),
		Host:   addr.Authority(),
	}

	var rm mux.RouteMatch
	if !r.router.Match(req, &rm) || rm.Route == nil {
		return NoMatch, 0
	}

	switch rm.Route.GetName() {
	case MatchBooks.String():
		return MatchBooks, 0
	case MatchBookID.String():
		id, err := addr.ID()
		if err != nil {
			return NoMatch, 0
		}
		return MatchBookID, id
	default:
		return NoMatch, 0
	}
}
