// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/shopx/internal/forms"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
)

// FakeCatalog is an in-memory test double for services.Catalog.
//
// Writes mutate Videos and Categories the way the API would, so a reload after a save observes the change.
type FakeCatalog struct {
	mu sync.Mutex

	Videos     []models.Video
	Categories []models.Category

	ListVideosErr     error
	ListCategoriesErr error
	WriteErr          error
	PageErrs          map[int]error

	// BeforeListVideos runs before each ListVideos call returns, outside the lock.
	BeforeListVideos func(page int)
	// BeforeWrite runs at the start of each create or update, outside the lock.
	BeforeWrite func(op string)

	calls    []string
	payloads []*forms.Payload
}

// NewFakeCatalog returns a catalog seeded with videos and categories.
func NewFakeCatalog(videos []models.Video, categories []models.Category) *FakeCatalog {
	return &FakeCatalog{Videos: slices.Clone(videos), Categories: slices.Clone(categories)}
}

// SeedVideos returns n videos with ids 1..n, titles "Video N" and category 1 for odd ids and 2 for even ids.
func SeedVideos(n int) []models.Video {
	out := make([]models.Video, 0, n)
	for i := 1; i <= n; i++ {
		cat := int64(2 - i%2)
		out = append(out, models.Video{
			ID:         int64(i),
			Title:      fmt.Sprintf("Video %d", i),
			AmazonLink: fmt.Sprintf("https://amazon.example/dp/%d", i),
			Tags:       []string{fmt.Sprintf("tag%d", i)},
			CategoryID: &cat,
		})
	}
	return out
}

// Calls returns the operations performed so far, e.g. "ListVideos 2 10" or "UpdateVideo 3 title,tags".
func (f *FakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Count returns how many calls start with prefix.
func (f *FakeCatalog) Count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Payloads returns every payload passed to a write.
func (f *FakeCatalog) Payloads() []*forms.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.payloads)
}

func (f *FakeCatalog) ListVideos(ctx context.Context, page, limit int) (*models.Page[models.Video], error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("ListVideos %d %d", page, limit))
	err := f.ListVideosErr
	if pe, ok := f.PageErrs[page]; ok {
		err = pe
	}
	videos := slices.Clone(f.Videos)
	hook := f.BeforeListVideos
	f.mu.Unlock()

	if hook != nil {
		hook(page)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := len(videos)
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	start := min(max(0, (page-1)*limit), total)
	end := min(start+limit, total)

	return &models.Page[models.Video]{
		Data:       videos[start:end],
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (f *FakeCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ListCategories")
	if f.ListCategoriesErr != nil {
		return nil, f.ListCategoriesErr
	}
	return slices.Clone(f.Categories), nil
}

func (f *FakeCatalog) beforeWrite(op string) {
	if f.BeforeWrite != nil {
		f.BeforeWrite(op)
	}
}

func (f *FakeCatalog) write(op string, id int64, p *forms.Payload) error {
	call := op
	if id != 0 {
		call = fmt.Sprintf("%s %d", op, id)
	}
	if p != nil {
		call += " " + strings.Join(p.Names(), ",")
		f.payloads = append(f.payloads, p)
	}
	f.calls = append(f.calls, call)
	return f.WriteErr
}

func (f *FakeCatalog) CreateVideo(ctx context.Context, p *forms.Payload) error {
	f.beforeWrite("CreateVideo")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("CreateVideo", 0, p); err != nil {
		return err
	}

	var next int64 = 1
	for _, v := range f.Videos {
		next = max(next, v.ID+1)
	}
	v := models.Video{ID: next}
	applyVideo(&v, p)
	f.Videos = append(f.Videos, v)
	return nil
}

func (f *FakeCatalog) UpdateVideo(ctx context.Context, id int64, p *forms.Payload) error {
	f.beforeWrite("UpdateVideo")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("UpdateVideo", id, p); err != nil {
		return err
	}
	for i := range f.Videos {
		if f.Videos[i].ID == id {
			applyVideo(&f.Videos[i], p)
			return nil
		}
	}
	return fmt.Errorf("%w: video %d", shared.ErrNotFound, id)
}

func (f *FakeCatalog) DeleteVideo(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("DeleteVideo", id, nil); err != nil {
		return err
	}
	for i, v := range f.Videos {
		if v.ID == id {
			f.Videos = slices.Delete(f.Videos, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: video %d", shared.ErrNotFound, id)
}

func (f *FakeCatalog) CreateCategory(ctx context.Context, p *forms.Payload) error {
	f.beforeWrite("CreateCategory")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("CreateCategory", 0, p); err != nil {
		return err
	}

	var next int64 = 1
	for _, c := range f.Categories {
		next = max(next, c.ID+1)
	}
	c := models.Category{ID: next}
	applyCategory(&c, p)
	f.Categories = append(f.Categories, c)
	return nil
}

func (f *FakeCatalog) UpdateCategory(ctx context.Context, id int64, p *forms.Payload) error {
	f.beforeWrite("UpdateCategory")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("UpdateCategory", id, p); err != nil {
		return err
	}
	for i := range f.Categories {
		if f.Categories[i].ID == id {
			applyCategory(&f.Categories[i], p)
			return nil
		}
	}
	return fmt.Errorf("%w: category %d", shared.ErrNotFound, id)
}

func (f *FakeCatalog) DeleteCategory(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("DeleteCategory", id, nil); err != nil {
		return err
	}
	for i, c := range f.Categories {
		if c.ID == id {
			f.Categories = slices.Delete(f.Categories, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: category %d", shared.ErrNotFound, id)
}

func applyVideo(v *models.Video, p *forms.Payload) {
	if val, ok := p.Value("title"); ok {
		v.Title = val.Text
	}
	if val, ok := p.Value("description"); ok {
		v.Description = val.Text
	}
	if val, ok := p.Value("amazonLink"); ok {
		v.AmazonLink = val.Text
	}
	if val, ok := p.Value("tags"); ok {
		v.Tags = val.List
	}
	if val, ok := p.Value("categoryId"); ok {
		v.CategoryID = val.Number
	}
	if val, ok := p.Value("metaTitle"); ok {
		v.MetaTitle = val.Text
	}
	if val, ok := p.Value("metaDescription"); ok {
		v.MetaDescription = val.Text
	}
	if val, ok := p.Value("metaKeywords"); ok {
		v.MetaKeywords = val.List
	}
	if a, ok := p.Attachment("video"); ok {
		v.VideoURL = "/uploads/" + a.Filename
	}
	if a, ok := p.Attachment("thumbnail"); ok {
		v.ThumbnailURL = "/uploads/" + a.Filename
	}
}

func applyCategory(c *models.Category, p *forms.Payload) {
	if val, ok := p.Value("name"); ok {
		c.Name = val.Text
	}
	if a, ok := p.Attachment("image"); ok {
		c.ImgURL = "/uploads/" + a.Filename
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
