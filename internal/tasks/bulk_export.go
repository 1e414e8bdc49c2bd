package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/shopx/internal/formatter"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
	"golang.org/x/time/rate"
)

// FetchOpts configures a full-catalog page scan.
type FetchOpts struct {
	PageSize   int     // Videos per request (default: 50)
	NumWorkers int     // Concurrent workers (default: engine workers, then 4)
	RateLimit  float64 // Requests per second (default: engine rate, then 5)
}

// PageError records a page that could not be fetched.
type PageError struct {
	Page  int
	Error error
}

// FetchResult holds every video gathered by a page scan, in page order.
type FetchResult struct {
	Videos     []models.Video
	Total      int
	TotalPages int
	Failed     []PageError
}

// ExportOpts configures [CatalogEngine.ExportAll].
type ExportOpts struct {
	FetchOpts
	Format string // csv, markdown, txt or json
	Path   string // output file
}

// ExportResult summarizes an export.
type ExportResult struct {
	FetchResult
	Path string
}

type pageResult struct {
	page   int
	videos []models.Video
	err    error
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *CatalogEngine) fetchDefaults(opts FetchOpts) FetchOpts {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = e.workers
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = e.rateLimit
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	return opts
}

// FetchAll reads every page of videos. Page 1 is fetched first to learn the page count, then the remaining pages
// go through a rate-limited worker pool. Failed pages are reported in the result rather than aborting the scan.
func (e *CatalogEngine) FetchAll(ctx context.Context, prog chan<- ProgressUpdate, opts FetchOpts) (*FetchResult, error) {
	opts = e.fetchDefaults(opts)
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	first, err := e.catalog.ListVideos(ctx, 1, opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	totalPages := first.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}

	result := &FetchResult{Total: first.Total, TotalPages: totalPages}
	pages := map[int][]models.Video{1: first.Data}
	sendProgress(prog, fetchedPageUpdate(1, totalPages, 1))

	jobs := make(chan int, totalPages)
	results := make(chan pageResult, totalPages)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.pageWorker(ctx, &wg, limiter, opts.PageSize, jobs, results)
	}

	for p := 2; p <= totalPages; p++ {
		jobs <- p
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 1
	for res := range results {
		completed++
		if res.err != nil {
			result.Failed = append(result.Failed, PageError{Page: res.page, Error: res.err})
			sendProgress(prog, failedPageUpdate(completed, totalPages, res.page, res.err))
			continue
		}
		pages[res.page] = res.videos
		sendProgress(prog, fetchedPageUpdate(completed, totalPages, res.page))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order := make([]int, 0, len(pages))
	for p := range pages {
		order = append(order, p)
	}
	sort.Ints(order)
	for _, p := range order {
		result.Videos = append(result.Videos, pages[p]...)
	}
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].Page < result.Failed[j].Page })

	e.logger.Debug("page scan finished", "pages", totalPages, "videos", len(result.Videos), "failed", len(result.Failed))
	return result, nil
}

// pageWorker fetches pages from the jobs channel, waiting on the shared limiter before each request.
func (e *CatalogEngine) pageWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	pageSize int,
	jobs <-chan int,
	results chan<- pageResult,
) {
	defer wg.Done()

	for page := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- pageResult{page: page, err: err}
			continue
		}

		resp, err := e.catalog.ListVideos(ctx, page, pageSize)
		if err != nil {
			results <- pageResult{page: page, err: err}
			continue
		}
		results <- pageResult{page: page, videos: resp.Data}
	}
}

// ExportAll scans every page and writes the videos to opts.Path in opts.Format, with category names resolved.
func (e *CatalogEngine) ExportAll(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: export path is required", shared.ErrMissingArgument)
	}
	if !formatter.ValidFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, opts.Format)
	}

	scan, err := e.FetchAll(ctx, prog, opts.FetchOpts)
	if err != nil {
		return nil, err
	}

	cats, err := e.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	sendProgress(prog, writingExportUpdate(len(scan.Videos), opts.Path))
	if err := formatter.WriteVideoFile(opts.Path, opts.Format, scan.Videos, cats); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	e.logger.Info("export written", "path", opts.Path, "videos", len(scan.Videos), "format", opts.Format)
	return &ExportResult{FetchResult: *scan, Path: opts.Path}, nil
}
