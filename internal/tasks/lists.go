package tasks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/shopx/internal/formatter"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/pagination"
	"github.com/desertthunder/shopx/internal/services"
	"github.com/desertthunder/shopx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// LoadRequest identifies one list load. Seq increases with every request issued by a list.
type LoadRequest struct {
	Seq   uint64
	Page  int
	Limit int
}

// VideoLoad is the joined result of a video page and the category reference data.
type VideoLoad struct {
	Request    LoadRequest
	Page       *models.Page[models.Video]
	Categories []models.Category
}

// VideoList holds the state of the paginated video list. It is safe for concurrent use.
type VideoList struct {
	catalog services.Catalog

	mu         sync.Mutex
	seq        uint64
	pager      *pagination.Pager
	items      []models.Video
	categories []models.Category
	query      string
	categoryID int64
	loaded     bool
	shownPage  int
	shownSize  int
}

// NewVideoList creates a list on page 1 with the given page size and window radius.
func NewVideoList(catalog services.Catalog, pageSize, delta int) *VideoList {
	return &VideoList{catalog: catalog, pager: pagination.NewPager(pageSize, delta)}
}

// Begin issues a new request for the current page. Earlier requests become stale.
func (l *VideoList) Begin() LoadRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return LoadRequest{Seq: l.seq, Page: l.pager.CurrentPage, Limit: l.pager.PageSize}
}

// Fetch loads the requested page and all categories concurrently and returns once both have completed.
func (l *VideoList) Fetch(ctx context.Context, req LoadRequest) (*VideoLoad, error) {
	load := &VideoLoad{Request: req}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := l.catalog.ListVideos(gctx, req.Page, req.Limit)
		if err != nil {
			return err
		}
		load.Page = page
		return nil
	})
	g.Go(func() error {
		cats, err := l.catalog.ListCategories(gctx)
		if err != nil {
			return err
		}
		load.Categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return load, nil
}

// Apply installs load unless a newer request has been issued since. It reports whether load was applied.
func (l *VideoList) Apply(load *VideoLoad) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if load == nil || load.Request.Seq != l.seq {
		return false
	}

	page := load.Page.Page
	if page == 0 {
		page = load.Request.Page
	}
	limit := load.Page.Limit
	if limit == 0 {
		limit = load.Request.Limit
	}

	l.items = slices.Clone(load.Page.Data)
	l.categories = slices.Clone(load.Categories)
	l.pager.Apply(page, limit, load.Page.Total, load.Page.TotalPages)
	l.shownPage = l.pager.CurrentPage
	l.shownSize = l.pager.PageSize
	l.loaded = true
	return true
}

// Fail handles a failed request. If req is still the latest, the page number and size move back to those of the
// displayed items.
func (l *VideoList) Fail(req LoadRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if req.Seq == l.seq && l.shownPage > 0 {
		l.pager.CurrentPage = l.shownPage
		l.pager.PageSize = l.shownSize
	}
}

// Current reports whether seq is the latest issued request.
func (l *VideoList) Current(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return seq == l.seq
}

// Load fetches and applies the current page. On failure the previous items and page state are kept.
//
// When the server reports fewer pages than the requested page, the last page is loaded instead.
func (l *VideoList) Load(ctx context.Context) error {
	req := l.Begin()
	load, err := l.Fetch(ctx, req)
	if err != nil {
		l.Fail(req)
		return err
	}
	if !l.Apply(load) {
		return nil
	}

	l.mu.Lock()
	clamped := l.pager.CurrentPage != req.Page && l.pager.TotalPages > 0
	l.mu.Unlock()
	if clamped {
		req = l.Begin()
		if load, err = l.Fetch(ctx, req); err != nil {
			l.Fail(req)
			return err
		}
		l.Apply(load)
	}
	return nil
}

// Loaded reports whether any load has been applied.
func (l *VideoList) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Items returns the videos of the current page.
func (l *VideoList) Items() []models.Video {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Categories returns the category reference data from the last load.
func (l *VideoList) Categories() []models.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.categories)
}

// SetQuery filters visible videos by a case-insensitive match on title or any tag.
func (l *VideoList) SetQuery(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = q
}

// SetCategoryFilter limits visible videos to category id. Zero shows all categories.
func (l *VideoList) SetCategoryFilter(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.categoryID = id
}

// Filters returns the current query and category filter.
func (l *VideoList) Filters() (string, int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query, l.categoryID
}

// Visible returns the current page filtered by query and category.
func (l *VideoList) Visible() []models.Video {
	l.mu.Lock()
	defer l.mu.Unlock()
	return FilterVideos(l.items, l.query, l.categoryID)
}

// FilterVideos returns the videos matching query (title or tag) and category id, where 0 matches any category.
func FilterVideos(videos []models.Video, query string, categoryID int64) []models.Video {
	out := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if categoryID != 0 && (v.CategoryID == nil || *v.CategoryID != categoryID) {
			continue
		}
		if query != "" && !matchesQuery(v, query) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matchesQuery(v models.Video, q string) bool {
	if shared.ContainsFold(v.Title, q) {
		return true
	}
	for _, tag := range v.Tags {
		if shared.ContainsFold(tag, q) {
			return true
		}
	}
	return false
}

// CategoryName returns the name of category id, or "-" when unknown.
func (l *VideoList) CategoryName(id *int64) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return formatter.CategoryName(l.categories, id)
}

// Find returns the video with id from the current page.
func (l *VideoList) Find(id int64) (models.Video, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range l.items {
		if v.ID == id {
			return v, true
		}
	}
	return models.Video{}, false
}

// PageState returns a snapshot of the page state.
func (l *VideoList) PageState() pagination.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.State
}

// Tokens returns the page-control window for the current state.
func (l *VideoList) Tokens() []pagination.Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.Tokens()
}

// CanPrev and CanNext report whether backward and forward navigation is enabled.
func (l *VideoList) CanPrev() bool { return l.navigate(func(p *pagination.Pager) bool { return p.CanPrev() }) }
func (l *VideoList) CanNext() bool { return l.navigate(func(p *pagination.Pager) bool { return p.CanNext() }) }

// Navigation commands return false and leave the state untouched when the move is not possible.
func (l *VideoList) First() bool { return l.navigate((*pagination.Pager).First) }
func (l *VideoList) Prev() bool  { return l.navigate((*pagination.Pager).Prev) }
func (l *VideoList) Next() bool  { return l.navigate((*pagination.Pager).Next) }
func (l *VideoList) Last() bool  { return l.navigate((*pagination.Pager).Last) }

func (l *VideoList) GoTo(n int) bool {
	return l.navigate(func(p *pagination.Pager) bool { return p.GoTo(n) })
}

func (l *VideoList) SetPageSize(size int) bool {
	return l.navigate(func(p *pagination.Pager) bool { return p.SetPageSize(size) })
}

// Jump moves to page with the given size without checking either against the last response. A page past the end
// is clamped by the next [VideoList.Load]. Non-positive values leave the current setting.
func (l *VideoList) Jump(page, size int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if size > 0 {
		l.pager.PageSize = size
	}
	if page > 0 {
		l.pager.CurrentPage = page
	}
}

func (l *VideoList) navigate(fn func(p *pagination.Pager) bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.pager)
}

// CategoryList holds the category list. It is safe for concurrent use.
type CategoryList struct {
	catalog services.Catalog

	mu     sync.Mutex
	seq    uint64
	items  []models.Category
	loaded bool
}

// NewCategoryList creates an empty category list.
func NewCategoryList(catalog services.Catalog) *CategoryList {
	return &CategoryList{catalog: catalog}
}

// Load fetches all categories. Stale results are dropped and failures keep the previous items.
func (l *CategoryList) Load(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	cats, err := l.catalog.ListCategories(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq == l.seq {
		l.items = cats
		l.loaded = true
	}
	return nil
}

// Loaded reports whether any load has been applied.
func (l *CategoryList) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Items returns the loaded categories.
func (l *CategoryList) Items() []models.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Find returns category id.
func (l *CategoryList) Find(id int64) (models.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.items {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, fmt.Errorf("%w: %d", shared.ErrCategoryNotFound, id)
}
