package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/services"
	"github.com/desertthunder/shopx/internal/shared"
	tu "github.com/desertthunder/shopx/internal/testing"
	"github.com/urfave/cli/v3"
)

type fixture struct {
	runner *Runner
	fake   *tu.FakeCatalog
	out    *bytes.Buffer
	db     *sql.DB
}

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Credentials = shared.CredentialsConfig{Username: "admin", Password: "secret"}
	config.UI.PageSize = 5
	config.UI.DefaultView = "table"
	return config
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.OpenMigrated(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	fake := tu.NewFakeCatalog(tu.SeedVideos(12), []models.Category{{ID: 1, Name: "Cooking"}, {ID: 2, Name: "Garden"}})
	out := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		Config:  testConfig(),
		Catalog: fake,
		DB:      db,
		Logger:  shared.NewLogger(io.Discard),
		Output:  out,
	})
	return &fixture{runner: runner, fake: fake, out: out, db: db}
}

func (f *fixture) run(args ...string) error {
	return runApp(f.runner, args...)
}

func runApp(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:      "shopx",
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"shopx"}, args...))
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	if err := f.run("auth", "login", "-u", "admin", "-p", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	f.out.Reset()
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			api := services.NewAPIService("http://example.test", nil)
			fake := tu.NewFakeCatalog(nil, nil)
			db := openTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				API:        api,
				Catalog:    fake,
				DB:         db,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.catalog != fake {
				t.Error("expected catalog to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.sessions == nil || runner.views == nil || runner.history == nil {
				t.Error("expected database-backed stores to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.api == nil || runner.catalog == nil || runner.auth == nil {
				t.Error("expected api, catalog and authenticator to be built from config")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("without database leaves stores unset", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.sessions != nil || runner.views != nil || runner.history != nil {
				t.Error("expected no stores without a database")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln wraps in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("done")
			if result := output.String(); result != "\ndone\n" {
				t.Errorf("expected wrapped line, got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		var names []string
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		want := []string{"setup", "auth", "videos", "categories", "view", "api", "history", "tui"}
		if !slices.Equal(names, want) {
			t.Errorf("expected commands %v, got %v", want, names)
		}
	})
}

func TestSessionGate(t *testing.T) {
	t.Run("catalog commands require login", func(t *testing.T) {
		f := newFixture(t)

		for _, args := range [][]string{
			{"videos", "list"},
			{"videos", "delete", "1"},
			{"categories", "list"},
			{"api", "get", "/videos"},
		} {
			if err := f.run(args...); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("%v: expected ErrNotAuthenticated, got %v", args, err)
			}
		}
		if calls := f.fake.Calls(); len(calls) != 0 {
			t.Errorf("expected no API calls, got %v", calls)
		}
	})

	t.Run("without database", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:  testConfig(),
			Catalog: tu.NewFakeCatalog(nil, nil),
			Logger:  shared.NewLogger(io.Discard),
			Output:  &bytes.Buffer{},
		})

		for _, args := range [][]string{
			{"videos", "list"},
			{"auth", "login", "-u", "admin", "-p", "secret"},
			{"view", "get"},
			{"history"},
			{"tui"},
		} {
			if err := runApp(runner, args...); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("%v: expected ErrServiceUnavailable, got %v", args, err)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	f := newFixture(t)

	if err := f.run("auth", "login", "-u", "admin", "-p", "wrong"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.run("auth", "status"); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated before login, got %v", err)
	}

	if err := f.run("auth", "login", "-u", "admin", "-p", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "Signed in as admin") {
		t.Errorf("expected sign-in message, got %q", f.out.String())
	}

	f.out.Reset()
	if err := f.run("auth", "status", "--json"); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	var sess models.Session
	if err := json.Unmarshal(f.out.Bytes(), &sess); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if sess.Username != "admin" {
		t.Errorf("expected admin session, got %+v", sess)
	}

	if err := f.run("auth", "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if err := f.run("auth", "status"); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated after logout, got %v", err)
	}
}

func TestVideosList(t *testing.T) {
	t.Run("renders the requested page", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "list", "--page", "2"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		out := f.out.String()
		if f.fake.Count("ListVideos 2 5") != 1 {
			t.Errorf("expected page 2 request, got %v", f.fake.Calls())
		}
		for _, want := range []string{"Video 6", "Video 10", "[2]", "Showing 5 of 12 videos"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Video 11") {
			t.Errorf("did not expect page 3 items in output:\n%s", out)
		}
	})

	t.Run("out of range page shows the last page", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "list", "--page", "9"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		out := f.out.String()
		if !strings.Contains(out, "Video 12") || !strings.Contains(out, "[3]") {
			t.Errorf("expected clamped last page, got:\n%s", out)
		}
	})

	t.Run("json output", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "list", "--limit", "10", "--json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		var page models.Page[models.Video]
		if err := json.Unmarshal(f.out.Bytes(), &page); err != nil {
			t.Fatalf("failed to decode page: %v", err)
		}
		if page.Page != 1 || page.Limit != 10 || page.Total != 12 || page.TotalPages != 2 || len(page.Data) != 10 {
			t.Errorf("unexpected page %+v", page)
		}
	})

	t.Run("query filters the page", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "list", "--query", "video 3"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "Showing 1 of 12 videos") {
			t.Errorf("expected filtered summary, got:\n%s", f.out.String())
		}
	})

	t.Run("invalid flags", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		for _, args := range [][]string{
			{"videos", "list", "--view", "grid"},
			{"videos", "list", "--page", "0"},
		} {
			if err := f.run(args...); !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("%v: expected ErrInvalidFlag, got %v", args, err)
			}
		}
	})
}

func TestVideosWrite(t *testing.T) {
	t.Run("create without tags sends nothing", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		video := writeTempFile(t, "clip.mp4", "mp4")
		thumb := writeTempFile(t, "thumb.jpg", "jpg")

		err := f.run("videos", "create",
			"--title", "Knife Skills", "--description", "Basics", "--amazon-link", "https://amazon.example/dp/x",
			"--category-id", "1", "--video", video, "--thumbnail", thumb)
		if !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if !strings.Contains(err.Error(), "tags") {
			t.Errorf("expected missing tags in error, got %v", err)
		}
		if f.fake.Count("CreateVideo") != 0 {
			t.Errorf("expected no create request, got %v", f.fake.Calls())
		}
	})

	t.Run("create uploads every field", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		video := writeTempFile(t, "clip.mp4", "mp4")
		thumb := writeTempFile(t, "thumb.jpg", "jpg")

		err := f.run("videos", "create",
			"--title", "Knife Skills", "--description", "Basics", "--amazon-link", "https://amazon.example/dp/x",
			"--tag", "knives", "--tag", "prep", "--category-id", "1", "--video", video, "--thumbnail", thumb)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		want := "CreateVideo title,description,amazonLink,tags,categoryId,metaKeywords,video,thumbnail"
		if f.fake.Count(want) != 1 {
			t.Errorf("expected %q, got %v", want, f.fake.Calls())
		}
		if !strings.Contains(f.out.String(), "Created: Video uploaded") {
			t.Errorf("expected created notice, got %q", f.out.String())
		}
	})

	t.Run("update sends only changed fields", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "update", "--title", "Renamed", "3"); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if f.fake.Count("UpdateVideo 3 title") != 1 {
			t.Errorf("expected title-only update, got %v", f.fake.Calls())
		}
		if !strings.Contains(f.out.String(), "Sent title") {
			t.Errorf("expected sent fields, got %q", f.out.String())
		}
	})

	t.Run("unchanged update is skipped", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "update", "--title", "Video 3", "3"); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if f.fake.Count("UpdateVideo") != 0 {
			t.Errorf("expected no update request, got %v", f.fake.Calls())
		}
		if !strings.Contains(f.out.String(), "No changes to save") {
			t.Errorf("expected unchanged notice, got %q", f.out.String())
		}
	})

	t.Run("dry run previews a thumbnail-only multipart update", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		thumb := writeTempFile(t, "new.jpg", "jpg")

		if err := f.run("videos", "update", "--thumbnail", thumb, "--dry-run", "3"); err != nil {
			t.Fatalf("dry run failed: %v", err)
		}

		out := f.out.String()
		if !strings.Contains(out, "fields thumbnail (multipart)") || !strings.Contains(out, "@new.jpg") {
			t.Errorf("expected thumbnail preview, got:\n%s", out)
		}
		if f.fake.Count("UpdateVideo") != 0 {
			t.Errorf("dry run must not send, got %v", f.fake.Calls())
		}
	})

	t.Run("id argument errors", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "delete"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := f.run("videos", "delete", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := f.run("videos", "update", "--title", "x", "99"); !errors.Is(err, shared.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", err)
		}
	})

	t.Run("delete records history", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		if err := f.run("videos", "delete", "2"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if f.fake.Count("DeleteVideo 2") != 1 {
			t.Errorf("expected delete request, got %v", f.fake.Calls())
		}
		if !strings.Contains(f.out.String(), "Deleted: Video removed") {
			t.Errorf("expected deleted notice, got %q", f.out.String())
		}

		f.out.Reset()
		if err := f.run("history", "--entity", "video", "--json"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		var entries []historyEntry
		if err := json.Unmarshal(f.out.Bytes(), &entries); err != nil {
			t.Fatalf("failed to decode history: %v", err)
		}
		if len(entries) != 1 || entries[0].EntityID != 2 || entries[0].Operation != string(models.OpDelete) {
			t.Errorf("unexpected history %+v", entries)
		}
	})

	t.Run("open uses the amazon link", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		var opened string
		f.runner.openURL = func(u string) error {
			opened = u
			return nil
		}

		if err := f.run("videos", "open", "4"); err != nil {
			t.Fatalf("open failed: %v", err)
		}
		if opened != "https://amazon.example/dp/4" {
			t.Errorf("expected amazon link, got %q", opened)
		}
	})
}

func TestVideosExport(t *testing.T) {
	t.Run("first page", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		path := filepath.Join(t.TempDir(), "videos.csv")

		if err := f.run("videos", "export", "-o", path); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "Video 5") || strings.Contains(content, "Video 6") {
			t.Errorf("expected only the first page, got:\n%s", content)
		}
	})

	t.Run("all pages", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		path := filepath.Join(t.TempDir(), "videos.md")

		if err := f.run("videos", "export", "--all", "--format", "md", "-o", path); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "## Video 12") || !strings.Contains(content, "**Total**: 12") {
			t.Errorf("expected every video, got:\n%s", content)
		}
		if !strings.Contains(f.out.String(), "Exported 12 of 12 videos") {
			t.Errorf("expected export summary, got %q", f.out.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)

		err := f.run("videos", "export", "--format", "xml", "-o", filepath.Join(t.TempDir(), "v.xml"))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestCategoriesCommands(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	if err := f.run("categories", "list"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out := f.out.String(); !strings.Contains(out, "Garden") || !strings.Contains(out, "Showing 2 of 2 categories") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	if err := f.run("categories", "create", "--name", "Tools"); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation without image, got %v", err)
	}

	image := writeTempFile(t, "tools.png", "png")
	if err := f.run("categories", "create", "--name", "Tools", "--image", image); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if f.fake.Count("CreateCategory name,image") != 1 {
		t.Errorf("expected create request, got %v", f.fake.Calls())
	}

	if err := f.run("categories", "update", "--name", "Kitchen", "1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if f.fake.Count("UpdateCategory 1 name") != 1 {
		t.Errorf("expected name-only update, got %v", f.fake.Calls())
	}

	if err := f.run("categories", "delete", "2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if f.fake.Count("DeleteCategory 2") != 1 {
		t.Errorf("expected delete request, got %v", f.fake.Calls())
	}

	f.out.Reset()
	if err := f.run("history", "--entity", "category"); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if out := f.out.String(); !strings.Contains(out, "delete") || !strings.Contains(out, "name") {
		t.Errorf("expected category history, got:\n%s", out)
	}
}

func TestViewCommands(t *testing.T) {
	f := newFixture(t)

	if err := f.run("view", "get"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := strings.TrimSpace(f.out.String()); got != "table" {
		t.Errorf("expected configured default table, got %q", got)
	}

	if err := f.run("view", "set", "cards"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	f.out.Reset()
	f.run("view", "get")
	if got := strings.TrimSpace(f.out.String()); got != "cards" {
		t.Errorf("expected saved cards, got %q", got)
	}

	if err := f.run("view", "set", "grid"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if err := f.run("view", "set"); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestHistoryCommand(t *testing.T) {
	f := newFixture(t)

	if err := f.run("history"); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "No writes recorded") {
		t.Errorf("expected empty history message, got %q", f.out.String())
	}

	if err := f.run("history", "--entity", "tag"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestAPIGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categories":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":1,"name":"Cooking"}]`))
		case "/health":
			w.Write([]byte("ok"))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Route not found"}`))
		}
	}))
	defer server.Close()

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: testConfig(),
		API:    services.NewAPIService(server.URL, server.Client()),
		DB:     openTestDB(t),
		Logger: shared.NewLogger(io.Discard),
		Output: out,
	})
	if err := runApp(runner, "auth", "login", "-u", "admin", "-p", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	tc := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{name: "pretty json", args: []string{"api", "get", "/categories"}, want: "\"name\": \"Cooking\""},
		{name: "compact json", args: []string{"api", "get", "--json", "/categories"}, want: `[{"id":1,"name":"Cooking"}]`},
		{name: "plain text", args: []string{"api", "get", "/health"}, want: "ok\n"},
		{name: "not found", args: []string{"api", "get", "/missing"}, wantErr: shared.ErrNotFound},
		{name: "missing path", args: []string{"api", "get"}, wantErr: shared.ErrMissingArgument},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := runApp(runner, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, out.String())
			}
		})
	}
}

func TestSetupDatabase(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	dir := t.TempDir()
	tu.MustChdir(t, dir)
	t.Cleanup(func() { tu.MustChdir(t, wd) })

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: out})

	if err := runApp(runner, "setup", "database", "--config", "config.toml"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	tu.AssertFileExists(t, filepath.Join(dir, "shopx.db"))
	if !strings.Contains(out.String(), "migrations: [0 1]") {
		t.Errorf("expected both migrations applied, got %q", out.String())
	}

	out.Reset()
	if err := runApp(runner, "setup", "rollback", "--config", "config.toml"); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if !strings.Contains(out.String(), "Rolled back") {
		t.Errorf("expected rollback message, got %q", out.String())
	}

	db, err := shared.NewDatabase(filepath.Join(dir, "shopx.db"))
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()
	applied, err := shared.AppliedVersions(db)
	if err != nil {
		t.Fatalf("AppliedVersions() error = %v", err)
	}
	if !applied[0] || applied[1] {
		t.Errorf("expected only version 0 applied, got %v", applied)
	}
}
