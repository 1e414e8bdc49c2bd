// Package pagination computes page-control tokens and tracks list page state.
//
// [Window] is a pure function of (current, total, delta). [Pager] wraps a [State] and rejects navigation outside
// [1, TotalPages] instead of clamping, so callers can both disable controls and rely on invalid moves being no-ops.
package pagination

import "strconv"

// PageSizes are the page sizes offered by list views.
var PageSizes = []int{5, 10, 20, 50}

// Token is one page-control entry: a page number or an ellipsis.
type Token struct {
	Page     int
	Ellipsis bool
}

func (t Token) String() string {
	if t.Ellipsis {
		return "..."
	}
	return strconv.Itoa(t.Page)
}

// Window returns the tokens for a control showing page current of total.
//
// Page 1 is always first. Pages in [max(2, current-delta), min(total-1, current+delta)] follow, with an ellipsis
// on either side of a gap, and total closes the sequence when it is greater than 1. current is clamped into
// [1, total] and a total below 1 is treated as a single page.
func Window(current, total, delta int) []Token {
	if total < 1 {
		total = 1
	}
	current = max(1, min(current, total))
	delta = max(0, delta)

	tokens := []Token{{Page: 1}}

	start := max(2, current-delta)
	end := min(total-1, current+delta)

	if start > 2 {
		tokens = append(tokens, Token{Ellipsis: true})
	}
	for p := start; p <= end; p++ {
		tokens = append(tokens, Token{Page: p})
	}
	if end < total-1 {
		tokens = append(tokens, Token{Ellipsis: true})
	}
	if total > 1 {
		tokens = append(tokens, Token{Page: total})
	}
	return tokens
}

// TotalPages returns ceil(items / size), or 0 when size is not positive.
func TotalPages(items, size int) int {
	if size <= 0 || items <= 0 {
		return 0
	}
	return (items + size - 1) / size
}

// State is the page state of a list view.
type State struct {
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
}

// Apply recomputes the state from a list response. When the server omits totalPages it is derived from total and
// limit. CurrentPage is clamped into [1, TotalPages] when non-zero.
func (s *State) Apply(page, limit, total, totalPages int) {
	if limit > 0 {
		s.PageSize = limit
	}
	s.TotalItems = max(0, total)
	if totalPages <= 0 {
		totalPages = TotalPages(s.TotalItems, s.PageSize)
	}
	s.TotalPages = totalPages
	s.CurrentPage = page
	if s.CurrentPage != 0 {
		s.CurrentPage = max(1, min(s.CurrentPage, max(1, s.TotalPages)))
	}
}

// Pager applies navigation commands to a [State].
type Pager struct {
	State
	Delta int
}

// NewPager returns a pager on page 1 with the given size and window radius.
func NewPager(size, delta int) *Pager {
	return &Pager{State: State{CurrentPage: 1, PageSize: size}, Delta: delta}
}

func (p *Pager) pages() int { return max(1, p.TotalPages) }

// CanPrev reports whether Prev and First would move.
func (p *Pager) CanPrev() bool { return p.CurrentPage > 1 }

// CanNext reports whether Next and Last would move.
func (p *Pager) CanNext() bool { return p.CurrentPage < p.pages() }

// GoTo moves to page n. It returns false and changes nothing when n is outside [1, TotalPages] or already current.
func (p *Pager) GoTo(n int) bool {
	if n < 1 || n > p.pages() || n == p.CurrentPage {
		return false
	}
	p.CurrentPage = n
	return true
}

func (p *Pager) First() bool { return p.GoTo(1) }
func (p *Pager) Prev() bool  { return p.GoTo(p.CurrentPage - 1) }
func (p *Pager) Next() bool  { return p.GoTo(p.CurrentPage + 1) }
func (p *Pager) Last() bool  { return p.GoTo(p.pages()) }

// SetPageSize changes the page size and returns to page 1. Sizes not in [PageSizes] are rejected.
func (p *Pager) SetPageSize(size int) bool {
	valid := false
	for _, s := range PageSizes {
		if s == size {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}
	p.PageSize = size
	p.CurrentPage = 1
	return true
}

// Tokens returns the window for the current state.
func (p *Pager) Tokens() []Token {
	return Window(p.CurrentPage, p.pages(), p.Delta)
}
