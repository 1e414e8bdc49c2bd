package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/shopx/internal/formatter"
	"github.com/desertthunder/shopx/internal/forms"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
	"github.com/desertthunder/shopx/internal/tasks"
	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v3"
)

const listWidth = 110

// videoTextFlags map command flags to the form fields they set.
var videoTextFlags = []struct{ flag, field string }{
	{"title", "title"},
	{"description", "description"},
	{"amazon-link", "amazonLink"},
	{"meta-title", "metaTitle"},
	{"meta-description", "metaDescription"},
}

var videoListFlags = []struct{ flag, field string }{
	{"tag", "tags"},
	{"meta-keyword", "metaKeywords"},
}

var videoFileFlags = []struct{ flag, field string }{
	{"video", "video"},
	{"thumbnail", "thumbnail"},
}

// parseID reads the positional id argument.
func parseID(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive number, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// applyVideoFlags copies every flag given on the command line into s. Unset flags leave the field alone.
func applyVideoFlags(cmd *cli.Command, s *forms.Session) error {
	for _, f := range videoTextFlags {
		if cmd.IsSet(f.flag) {
			if err := s.SetText(f.field, cmd.String(f.flag)); err != nil {
				return err
			}
		}
	}
	for _, f := range videoListFlags {
		if cmd.IsSet(f.flag) {
			if err := s.SetList(f.field, cmd.StringSlice(f.flag)); err != nil {
				return err
			}
		}
	}
	if cmd.IsSet("category-id") {
		if err := s.SetNumber("categoryId", int64(cmd.Int("category-id"))); err != nil {
			return err
		}
	}
	return attachFiles(cmd, s, videoFileFlags)
}

func attachFiles(cmd *cli.Command, s *forms.Session, flags []struct{ flag, field string }) error {
	for _, f := range flags {
		path := cmd.String(f.flag)
		if path == "" {
			continue
		}
		a, err := forms.FileAttachment(path)
		if err != nil {
			return fmt.Errorf("%w: --%s: %v", shared.ErrInvalidInput, f.flag, err)
		}
		if err := s.Attach(f.field, a); err != nil {
			return err
		}
	}
	return nil
}

// preview prints the fields a save of s would send.
func (r *Runner) preview(s *forms.Session) error {
	payload, err := s.Payload()
	if err != nil {
		return describeValidation(err)
	}
	if payload.Empty() {
		r.writePlain("No changes to save\n")
		return nil
	}

	printer := pp.New()
	printer.SetColoringEnabled(false)
	kind := "json"
	if payload.Multipart() {
		kind = "multipart"
	}
	r.writePlain("Would send %s fields %s (%s):\n", s.Schema().Entity, strings.Join(payload.Names(), ","), kind)
	r.writePlain("%s\n", printer.Sprint(payload.Preview()))
	return nil
}

// submit saves s, or previews it with --dry-run.
func (r *Runner) submit(ctx context.Context, cmd *cli.Command, s *forms.Session, save func(context.Context, *forms.Session) (*tasks.SaveResult, error)) error {
	if cmd.Bool("dry-run") {
		return r.preview(s)
	}

	result, err := save(ctx, s)
	if err != nil {
		return describeValidation(err)
	}

	r.drainNotices()
	if !result.Skipped {
		r.writePlain("Sent %s\n", strings.Join(result.Fields, ","))
	}
	return nil
}

// describeValidation adds the missing field names to a validation error.
func describeValidation(err error) error {
	var verr *forms.ValidationError
	if errors.As(err, &verr) && len(verr.Missing) > 0 {
		return fmt.Errorf("%w (missing: %s)", err, strings.Join(verr.Missing, ", "))
	}
	return err
}

// VideosList loads one page of videos and renders it with the page bar.
func (r *Runner) VideosList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	page := cmd.Int("page")
	limit := cmd.Int("limit")
	if page < 1 {
		return fmt.Errorf("%w: --page must be at least 1", shared.ErrInvalidFlag)
	}
	if limit < 0 {
		return fmt.Errorf("%w: --limit must be positive", shared.ErrInvalidFlag)
	}

	mode, err := r.views.Get()
	if err != nil {
		return err
	}
	if raw := cmd.String("view"); raw != "" {
		var ok bool
		if mode, ok = models.ParseViewMode(raw); !ok {
			return fmt.Errorf("%w: --view must be cards or table, got %q", shared.ErrInvalidFlag, raw)
		}
	}

	videos := r.engine.Videos
	videos.Jump(page, limit)
	videos.SetQuery(cmd.String("query"))
	videos.SetCategoryFilter(int64(cmd.Int("category")))

	if err := videos.Load(ctx); err != nil {
		return fmt.Errorf("failed to load videos: %w", err)
	}

	visible := videos.Visible()
	state := videos.PageState()

	if cmd.Bool("json") {
		return r.writeJSON(models.Page[models.Video]{
			Data:       visible,
			Page:       state.CurrentPage,
			Limit:      state.PageSize,
			Total:      state.TotalItems,
			TotalPages: state.TotalPages,
		}, true)
	}

	r.writePlain("%s\n\n", formatter.Videos(mode, visible, videos.Categories(), listWidth))
	r.writePlain("%s\n", formatter.PageBar(state, videos.Tokens()))
	r.writePlain("%s\n", formatter.Summary(len(visible), state.TotalItems, "videos"))
	return nil
}

// VideosShow prints a single video.
func (r *Runner) VideosShow(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	id, err := parseID(cmd)
	if err != nil {
		return err
	}

	v, err := r.engine.FindVideo(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(v, true)
	}

	r.writePlainHeader(v.Title)
	r.writePlain("ID:          %d\n", v.ID)
	r.writePlain("Category:    %s\n", r.engine.Videos.CategoryName(v.CategoryID))
	r.writePlain("Tags:        %s\n", strings.Join(v.Tags, ", "))
	r.writePlain("Amazon:      %s\n", v.AmazonLink)
	r.writePlain("Video:       %s\n", v.VideoURL)
	r.writePlain("Thumbnail:   %s\n", v.ThumbnailURL)
	if v.Description != "" {
		r.writePlainln("%s", v.Description)
	}
	return nil
}

// VideosCreate uploads a new video built from the flags.
func (r *Runner) VideosCreate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	s := forms.NewCreate(forms.VideoSchema)
	if err := applyVideoFlags(cmd, s); err != nil {
		return err
	}
	return r.submit(ctx, cmd, s, r.engine.SaveVideo)
}

// VideosUpdate sends only the fields whose flags differ from the stored video.
func (r *Runner) VideosUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	id, err := parseID(cmd)
	if err != nil {
		return err
	}

	v, err := r.engine.FindVideo(ctx, id)
	if err != nil {
		return err
	}

	s := forms.NewEdit(forms.VideoSchema, v.ID, forms.VideoRecord(*v))
	if err := applyVideoFlags(cmd, s); err != nil {
		return err
	}
	return r.submit(ctx, cmd, s, r.engine.SaveVideo)
}

// VideosDelete deletes a video.
func (r *Runner) VideosDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	id, err := parseID(cmd)
	if err != nil {
		return err
	}

	if err := r.engine.DeleteVideo(ctx, id); err != nil {
		return err
	}
	r.drainNotices()
	return nil
}

// VideosExport writes the first page, or every page with --all, to a file.
func (r *Runner) VideosExport(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	format := cmd.String("format")
	path := cmd.String("output")

	if !cmd.Bool("all") {
		if !formatter.ValidFormat(format) {
			return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
		}
		if err := r.engine.Videos.Load(ctx); err != nil {
			return fmt.Errorf("failed to load videos: %w", err)
		}
		items := r.engine.Videos.Items()
		if err := formatter.WriteVideoFile(path, format, items, r.engine.Videos.Categories()); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		r.writePlain("✓ Exported %d videos to %s\n", len(items), path)
		return nil
	}

	r.writePlainHeader("Exporting catalog")

	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.ExportAll(ctx, progress, tasks.ExportOpts{
		FetchOpts: tasks.FetchOpts{NumWorkers: cmd.Int("workers")},
		Format:    format,
		Path:      path,
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d of %d videos to %s", len(result.Videos), result.Total, result.Path)
	for _, failed := range result.Failed {
		r.writePlain("  ✗ page %d: %v\n", failed.Page, failed.Error)
	}
	return nil
}

// VideosOpen opens the Amazon link of a video in the default browser.
func (r *Runner) VideosOpen(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}
	id, err := parseID(cmd)
	if err != nil {
		return err
	}

	v, err := r.engine.FindVideo(ctx, id)
	if err != nil {
		return err
	}
	if v.AmazonLink == "" {
		return fmt.Errorf("%w: video %d has no Amazon link", shared.ErrInvalidInput, id)
	}

	if err := r.openURL(v.AmazonLink); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	r.writePlain("Opened %s\n", v.AmazonLink)
	return nil
}
