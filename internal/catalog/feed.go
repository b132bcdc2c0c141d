package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 200
)

var (
	ErrInvalidFilter = errors.New("invalid place filter")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrInvalidOrder  = errors.New("invalid order")
)

type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterPlace
	FilterUnknown
)

// Filter restricts the feed to all assets, an exact (country, city) pair, or
// assets whose country or city is missing.
type Filter struct {
	Kind    FilterKind
	Country string
	City    string
}

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

type FeedQuery struct {
	Limit  int
	Cursor string
	Filter Filter
	Order  Order
}

type FeedPage struct {
	Items      []Asset `json:"items"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// PageQuery is what the repository sees of a feed request.
type PageQuery struct {
	Filter Filter
	After  *Cursor
	Desc   bool
	Limit  int
}

// ParseFilter builds a filter from request parameters. country and city must
// be given together, and never together with unknown.
func ParseFilter(country, city, unknown string) (Filter, error) {
	country = strings.TrimSpace(country)
	city = strings.TrimSpace(city)

	wantUnknown := false
	if unknown != "" {
		b, err := strconv.ParseBool(unknown)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: unknown must be a boolean", ErrInvalidFilter)
		}
		wantUnknown = b
	}

	switch {
	case wantUnknown && (country != "" || city != ""):
		return Filter{}, fmt.Errorf("%w: unknown cannot be combined with country or city", ErrInvalidFilter)
	case wantUnknown:
		return Filter{Kind: FilterUnknown}, nil
	case country != "" && city != "":
		return Filter{Kind: FilterPlace, Country: country, City: city}, nil
	case country != "" || city != "":
		return Filter{}, fmt.Errorf("%w: country and city must be given together", ErrInvalidFilter)
	default:
		return Filter{Kind: FilterAll}, nil
	}
}

// ParseLimit defaults an empty limit and clamps it to 1..MaxFeedLimit.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return DefaultFeedLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidLimit, s)
	}
	return clampLimit(n), nil
}

func clampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxFeedLimit {
		return MaxFeedLimit
	}
	return n
}

func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", string(OrderDesc):
		return OrderDesc, nil
	case string(OrderAsc):
		return OrderAsc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
}

// Feed returns one page of the catalog. It asks storage for one row more than
// the limit to learn whether another page exists.
func (s *Service) Feed(ctx context.Context, q FeedQuery) (FeedPage, error) {
	limit := DefaultFeedLimit
	if q.Limit != 0 {
		limit = clampLimit(q.Limit)
	}
	if q.Order == "" {
		q.Order = OrderDesc
	}
	if q.Order != OrderAsc && q.Order != OrderDesc {
		return FeedPage{}, fmt.Errorf("%w: %q", ErrInvalidOrder, q.Order)
	}
	if q.Filter.Kind == FilterPlace && (q.Filter.Country == "" || q.Filter.City == "") {
		return FeedPage{}, fmt.Errorf("%w: country and city must be given together", ErrInvalidFilter)
	}

	pq := PageQuery{
		Filter: q.Filter,
		Desc:   q.Order == OrderDesc,
		Limit:  limit + 1,
	}
	if q.Cursor != "" {
		c, err := DecodeCursor(q.Cursor)
		if err != nil {
			return FeedPage{}, err
		}
		pq.After = &c
	}

	rows, err := s.repo.ListPage(ctx, pq)
	if err != nil {
		return FeedPage{}, err
	}

	page := FeedPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasMore = true
		next := EncodeCursor(CursorFor(page.Items[limit-1]))
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []Asset{}
	}
	return page, nil
}
