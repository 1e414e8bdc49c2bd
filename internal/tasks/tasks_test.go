package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/shopx/internal/forms"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
	tu "github.com/desertthunder/shopx/internal/testing"
)

type recordedWrite struct {
	entity string
	id     int64
	op     models.Operation
	fields []string
	err    error
}

type fakeRecorder struct {
	mu      sync.Mutex
	writes  []recordedWrite
	failing bool
}

func (r *fakeRecorder) Record(entity string, id int64, op models.Operation, fields []string, multipart bool, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, recordedWrite{entity: entity, id: id, op: op, fields: fields, err: err})
	if r.failing {
		return errors.New("disk full")
	}
	return nil
}

func newEngine(fake *tu.FakeCatalog) (*CatalogEngine, *fakeRecorder, chan Notice) {
	rec := &fakeRecorder{}
	notices := make(chan Notice, 10)
	e := NewCatalogEngine(fake, EngineOpts{Recorder: rec, Notices: notices, PageSize: 10, PageDelta: 2, RateLimit: 1000})
	return e, rec, notices
}

func lastNotice(t *testing.T, ch chan Notice) Notice {
	t.Helper()
	var n Notice
	found := false
	for {
		select {
		case n = <-ch:
			found = true
		default:
			if !found {
				t.Fatal("expected a notice")
			}
			return n
		}
	}
}

func completeVideoSession(t *testing.T) *forms.Session {
	t.Helper()
	s := forms.NewCreate(forms.VideoSchema)
	s.SetText("title", "Knife Skills")
	s.SetText("description", "<p>Chop</p>")
	s.SetText("amazonLink", "https://amazon.example/dp/9")
	s.SetList("tags", []string{"prep"})
	s.SetNumber("categoryId", 1)
	s.Attach("video", forms.BytesAttachment("v.mp4", []byte("v")))
	s.Attach("thumbnail", forms.BytesAttachment("t.jpg", []byte("t")))
	return s
}

func TestCatalogEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Without Tags Makes No Request", func(t *testing.T) {
		fake := tu.NewFakeCatalog(nil, seedCategories())
		e, rec, notices := newEngine(fake)

		s := completeVideoSession(t)
		s.SetList("tags", nil)

		_, err := e.SaveVideo(ctx, s)
		if !errors.Is(err, shared.ErrValidation) || !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if calls := fake.Calls(); len(calls) != 0 {
			t.Errorf("expected no requests, got %v", calls)
		}
		if len(rec.writes) != 0 {
			t.Error("validation failures should not be recorded")
		}
		if n := lastNotice(t, notices); n.Level != LevelError || n.Message != "Please fill all required fields" {
			t.Errorf("unexpected notice %+v", n)
		}
	})

	t.Run("Create Uploads And Reloads", func(t *testing.T) {
		fake := tu.NewFakeCatalog(nil, seedCategories())
		e, rec, notices := newEngine(fake)

		res, err := e.SaveVideo(ctx, completeVideoSession(t))
		if err != nil {
			t.Fatalf("SaveVideo() error = %v", err)
		}
		if res.Operation != models.OpCreate || !res.Multipart {
			t.Errorf("unexpected result %+v", res)
		}

		calls := fake.Calls()
		if !strings.HasPrefix(calls[0], "CreateVideo title,description,amazonLink,tags,categoryId,metaKeywords,video,thumbnail") {
			t.Errorf("unexpected create call %q", calls[0])
		}
		if fake.Count("ListVideos") != 1 {
			t.Error("expected list reload after create")
		}
		if items := e.Videos.Items(); len(items) != 1 || items[0].Title != "Knife Skills" {
			t.Errorf("expected reloaded list with new video, got %+v", items)
		}
		if n := lastNotice(t, notices); n.Title != "Created" || n.Message != "Video uploaded" {
			t.Errorf("unexpected notice %+v", n)
		}
		if len(rec.writes) != 1 || rec.writes[0].op != models.OpCreate {
			t.Errorf("expected one recorded create, got %+v", rec.writes)
		}
	})

	t.Run("Unchanged Edit Skips Request But Reloads", func(t *testing.T) {
		videos := tu.SeedVideos(3)
		fake := tu.NewFakeCatalog(videos, seedCategories())
		e, rec, notices := newEngine(fake)

		s := forms.NewEdit(forms.VideoSchema, 2, forms.VideoRecord(videos[1]))
		res, err := e.SaveVideo(ctx, s)
		if err != nil {
			t.Fatalf("SaveVideo() error = %v", err)
		}
		if !res.Skipped {
			t.Error("expected skipped result")
		}
		if fake.Count("UpdateVideo") != 0 {
			t.Error("no update request expected")
		}
		if fake.Count("ListVideos") != 1 {
			t.Error("expected reload")
		}
		if len(rec.writes) != 0 {
			t.Error("skipped saves should not be recorded")
		}
		if n := lastNotice(t, notices); n.Level != LevelInfo {
			t.Errorf("expected info notice, got %+v", n)
		}
	})

	t.Run("Thumbnail Only Edit", func(t *testing.T) {
		videos := tu.SeedVideos(3)
		fake := tu.NewFakeCatalog(videos, seedCategories())
		e, _, notices := newEngine(fake)

		s := forms.NewEdit(forms.VideoSchema, 3, forms.VideoRecord(videos[2]))
		s.Attach("thumbnail", forms.BytesAttachment("new.jpg", []byte("jpg")))

		res, err := e.SaveVideo(ctx, s)
		if err != nil {
			t.Fatalf("SaveVideo() error = %v", err)
		}
		if !slices.Equal(res.Fields, []string{"thumbnail"}) || !res.Multipart {
			t.Errorf("expected multipart thumbnail-only result, got %+v", res)
		}
		if fake.Count("UpdateVideo 3 thumbnail") != 1 {
			t.Errorf("unexpected calls %v", fake.Calls())
		}
		v, _ := e.Videos.Find(3)
		if v.ThumbnailURL != "/uploads/new.jpg" {
			t.Errorf("expected reloaded thumbnail, got %q", v.ThumbnailURL)
		}
		if n := lastNotice(t, notices); n.Message != "Video saved" {
			t.Errorf("unexpected notice %+v", n)
		}
	})

	t.Run("Failed Write Keeps Session", func(t *testing.T) {
		videos := tu.SeedVideos(2)
		fake := tu.NewFakeCatalog(videos, seedCategories())
		fake.WriteErr = errors.New("Title already exists")
		e, rec, notices := newEngine(fake)
		rec.failing = true

		s := forms.NewEdit(forms.VideoSchema, 1, forms.VideoRecord(videos[0]))
		s.SetText("title", "Duplicate")

		if _, err := e.SaveVideo(ctx, s); err == nil || err.Error() != "Title already exists" {
			t.Fatalf("expected API error, got %v", err)
		}
		if s.Value("title").Text != "Duplicate" {
			t.Error("session should keep edited values")
		}
		if fake.Count("ListVideos") != 0 {
			t.Error("failed write should not reload")
		}
		if n := lastNotice(t, notices); n.Title != "Error" || n.Message != "Title already exists" {
			t.Errorf("unexpected notice %+v", n)
		}
		if len(rec.writes) != 1 || rec.writes[0].err == nil {
			t.Errorf("expected failed write to be recorded, got %+v", rec.writes)
		}

		fake.WriteErr = nil
		if _, err := e.SaveVideo(ctx, s); err != nil {
			t.Fatalf("retry should succeed, got %v", err)
		}
		if fake.Count("UpdateVideo 1 title") != 2 {
			t.Errorf("expected two update attempts, got %v", fake.Calls())
		}
	})

	t.Run("Delete Reloads", func(t *testing.T) {
		fake := tu.NewFakeCatalog(tu.SeedVideos(3), seedCategories())
		e, _, notices := newEngine(fake)

		if err := e.DeleteVideo(ctx, 2); err != nil {
			t.Fatalf("DeleteVideo() error = %v", err)
		}
		if ids := videoIDs(e.Videos.Items()); !slices.Equal(ids, []int64{1, 3}) {
			t.Errorf("expected [1 3], got %v", ids)
		}
		if n := lastNotice(t, notices); n.Title != "Deleted" || n.Message != "Video removed" {
			t.Errorf("unexpected notice %+v", n)
		}

		if err := e.DeleteVideo(ctx, 2); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("deleting twice should surface the request error, got %v", err)
		}
	})

	t.Run("Category Lifecycle", func(t *testing.T) {
		fake := tu.NewFakeCatalog(nil, seedCategories())
		e, _, notices := newEngine(fake)

		s := forms.NewCreate(forms.CategorySchema)
		s.SetText("name", "Crafts")
		if _, err := e.SaveCategory(ctx, s); !IsValidation(err) {
			t.Fatalf("expected validation error without image, got %v", err)
		}
		if n := lastNotice(t, notices); n.Message != "Name and image are required" {
			t.Errorf("unexpected notice %+v", n)
		}

		s.Attach("image", forms.BytesAttachment("c.png", []byte("png")))
		if _, err := e.SaveCategory(ctx, s); err != nil {
			t.Fatalf("SaveCategory() error = %v", err)
		}
		if n := lastNotice(t, notices); n.Message != "Category added" {
			t.Errorf("unexpected notice %+v", n)
		}

		c, err := e.FindCategory(ctx, 3)
		if err != nil || c.Name != "Crafts" {
			t.Fatalf("FindCategory(3) = %+v, %v", c, err)
		}

		edit := forms.NewEdit(forms.CategorySchema, c.ID, forms.CategoryRecord(*c))
		edit.SetText("name", "Crafts & DIY")
		if _, err := e.SaveCategory(ctx, edit); err != nil {
			t.Fatalf("SaveCategory() edit error = %v", err)
		}
		if n := lastNotice(t, notices); n.Message != "Category saved" {
			t.Errorf("unexpected notice %+v", n)
		}
		if fake.Count("UpdateCategory 3 name") != 1 {
			t.Errorf("expected JSON name update, got %v", fake.Calls())
		}

		if err := e.DeleteCategory(ctx, 3); err != nil {
			t.Fatalf("DeleteCategory() error = %v", err)
		}
		if n := lastNotice(t, notices); n.Message != "Category removed" {
			t.Errorf("unexpected notice %+v", n)
		}
		if len(e.Categories.Items()) != 2 {
			t.Errorf("expected 2 categories after delete, got %d", len(e.Categories.Items()))
		}
	})

	t.Run("Wrong Schema", func(t *testing.T) {
		e, _, _ := newEngine(tu.NewFakeCatalog(nil, nil))
		if _, err := e.SaveVideo(ctx, forms.NewCreate(forms.CategorySchema)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Submit Payload", func(t *testing.T) {
		fake := tu.NewFakeCatalog(tu.SeedVideos(3), nil)
		e, _, _ := newEngine(fake)

		s := forms.NewEdit(forms.VideoSchema, 2, forms.VideoRecord(fake.Videos[1]))
		if err := s.SetText("title", "Renamed"); err != nil {
			t.Fatal(err)
		}
		p, err := s.Payload()
		if err != nil {
			t.Fatal(err)
		}
		_, _ = s.AddTag("tags", "after")

		if _, err := e.SubmitCategory(ctx, p); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for a video payload, got %v", err)
		}

		res, err := e.SubmitVideo(ctx, p)
		if err != nil {
			t.Fatalf("SubmitVideo() error = %v", err)
		}
		if res.ID != 2 || res.Operation != models.OpUpdate {
			t.Errorf("unexpected result %+v", res)
		}
		if fake.Count("UpdateVideo 2 title") != 1 {
			t.Errorf("expected title-only update, got %v", fake.Calls())
		}
	})

	t.Run("Nil Notices Channel", func(t *testing.T) {
		e := NewCatalogEngine(tu.NewFakeCatalog(tu.SeedVideos(1), nil), EngineOpts{})
		if err := e.DeleteVideo(ctx, 1); err != nil {
			t.Fatalf("DeleteVideo() error = %v", err)
		}
	})
}

func TestFetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Collects Pages In Order", func(t *testing.T) {
		fake := tu.NewFakeCatalog(tu.SeedVideos(23), nil)
		e, _, _ := newEngine(fake)
		prog := make(chan ProgressUpdate, 20)

		res, err := e.FetchAll(ctx, prog, FetchOpts{PageSize: 5, NumWorkers: 3})
		if err != nil {
			t.Fatalf("FetchAll() error = %v", err)
		}

		if res.TotalPages != 5 || res.Total != 23 || len(res.Failed) != 0 {
			t.Errorf("unexpected result totals %+v", res)
		}
		ids := videoIDs(res.Videos)
		for i, id := range ids {
			if id != int64(i+1) {
				t.Fatalf("videos out of order: %v", ids)
			}
		}
		if len(ids) != 23 {
			t.Errorf("expected 23 videos, got %d", len(ids))
		}
		if fake.Count("ListVideos") != 5 {
			t.Errorf("expected 5 page requests, got %d", fake.Count("ListVideos"))
		}
		if len(prog) != 5 {
			t.Errorf("expected 5 progress updates, got %d", len(prog))
		}
	})

	t.Run("Reports Failed Pages", func(t *testing.T) {
		fake := tu.NewFakeCatalog(tu.SeedVideos(20), nil)
		fake.PageErrs = map[int]error{3: errors.New("timeout")}
		e, _, _ := newEngine(fake)

		res, err := e.FetchAll(ctx, nil, FetchOpts{PageSize: 5})
		if err != nil {
			t.Fatalf("FetchAll() error = %v", err)
		}
		if len(res.Failed) != 1 || res.Failed[0].Page != 3 {
			t.Errorf("expected page 3 to fail, got %+v", res.Failed)
		}
		if len(res.Videos) != 15 {
			t.Errorf("expected 15 videos, got %d", len(res.Videos))
		}
	})

	t.Run("First Page Failure Aborts", func(t *testing.T) {
		fake := tu.NewFakeCatalog(tu.SeedVideos(20), nil)
		fake.ListVideosErr = errors.New("down")
		e, _, _ := newEngine(fake)

		if _, err := e.FetchAll(ctx, nil, FetchOpts{}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("FindVideo Scans Pages", func(t *testing.T) {
		fake := tu.NewFakeCatalog(tu.SeedVideos(120), nil)
		e, _, _ := newEngine(fake)

		v, err := e.FindVideo(ctx, 117)
		if err != nil || v.Title != "Video 117" {
			t.Fatalf("FindVideo(117) = %+v, %v", v, err)
		}
		if _, err := e.FindVideo(ctx, 500); !errors.Is(err, shared.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
	})

	t.Run("FindVideo Uses Loaded Page", func(t *testing.T) {
		fake := tu.NewFakeCatalog(tu.SeedVideos(5), seedCategories())
		e, _, _ := newEngine(fake)
		e.Videos.Load(ctx)

		before := fake.Count("ListVideos")
		if _, err := e.FindVideo(ctx, 4); err != nil {
			t.Fatalf("FindVideo() error = %v", err)
		}
		if fake.Count("ListVideos") != before {
			t.Error("expected no extra requests for a loaded video")
		}
	})
}

func TestExportAll(t *testing.T) {
	ctx := context.Background()
	fake := tu.NewFakeCatalog(tu.SeedVideos(12), seedCategories())
	e, _, _ := newEngine(fake)

	t.Run("Writes File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "videos.csv")

		res, err := e.ExportAll(ctx, nil, ExportOpts{FetchOpts: FetchOpts{PageSize: 5}, Format: "csv", Path: path})
		if err != nil {
			t.Fatalf("ExportAll() error = %v", err)
		}
		if res.Path != path || len(res.Videos) != 12 {
			t.Errorf("unexpected result %+v", res)
		}

		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "Video 12") || !strings.Contains(content, "Garden") {
			t.Errorf("export missing rows or category names:\n%s", content)
		}
	})

	t.Run("Rejects Unknown Format", func(t *testing.T) {
		_, err := e.ExportAll(ctx, nil, ExportOpts{Format: "xml", Path: filepath.Join(t.TempDir(), "x")})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Requires Path", func(t *testing.T) {
		if _, err := e.ExportAll(ctx, nil, ExportOpts{Format: "json"}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "out.json")
		os.RemoveAll(filepath.Dir(path))
		if _, err := e.ExportAll(ctx, nil, ExportOpts{Format: "json", Path: path}); err == nil {
			t.Error("expected error for unwritable path")
		}
	})
}
