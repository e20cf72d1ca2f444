package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mverbeek/peoplescan/pkg/archive"
	"github.com/mverbeek/peoplescan/pkg/detect"
	"github.com/mverbeek/peoplescan/pkg/history"
	"github.com/mverbeek/peoplescan/pkg/models"
	"github.com/mverbeek/peoplescan/pkg/output"
	"github.com/mverbeek/peoplescan/pkg/scan"
)

// TestHelper provides utilities for integration tests
type TestHelper struct {
	t          *testing.T
	tempDir    string
	photosDir  string
	archiveDir string
	console    *bytes.Buffer
}

// NewTestHelper creates a new integration test helper
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "peoplescan-integration-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	photosDir := filepath.Join(tempDir, "photos")
	archiveDir := filepath.Join(tempDir, "archive")

	if err := os.MkdirAll(photosDir, 0755); err != nil {
		t.Fatalf("failed to create photos dir: %v", err)
	}
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		t.Fatalf("failed to create archive dir: %v", err)
	}

	return &TestHelper{
		t:          t,
		tempDir:    tempDir,
		photosDir:  photosDir,
		archiveDir: archiveDir,
		console:    &bytes.Buffer{},
	}
}

// Cleanup removes all temporary files
func (h *TestHelper) Cleanup() {
	os.RemoveAll(h.tempDir)
}

// CreatePhoto creates an image file in the photos tree
func (h *TestHelper) CreatePhoto(name string, content []byte) {
	h.t.Helper()
	path := filepath.Join(h.photosDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to create photo: %v", err)
	}
}

// PhotoExists checks if a file exists in the photos tree
func (h *TestHelper) PhotoExists(name string) bool {
	_, err := os.Stat(filepath.Join(h.photosDir, name))
	return err == nil
}

// ArchivedExists checks if a file exists in the archive tree
func (h *TestHelper) ArchivedExists(name string) bool {
	_, err := os.Stat(filepath.Join(h.archiveDir, name))
	return err == nil
}

// ReadArchived reads a file from the archive tree
func (h *TestHelper) ReadArchived(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(h.archiveDir, name))
}

// NewRequest creates a default rooted recursive scan request
func (h *TestHelper) NewRequest() *models.ScanRequest {
	return &models.ScanRequest{
		ID:           "integration-op",
		Folder:       h.photosDir,
		ArchiveDir:   h.archiveDir,
		Root:         h.photosDir,
		Recursive:    true,
		MaxWorkers:   2,
		RescanPolicy: models.RescanAbort,
		CreatedAt:    time.Now(),
	}
}

// NewEngine wires a full orchestrator with a filename-based detector
// (files containing "person" match) and a scripted key sequence
func (h *TestHelper) NewEngine(req *models.ScanRequest, keys string) *scan.Orchestrator {
	h.t.Helper()

	console := output.NewConsole(h.console, false, false)
	reader := output.NewKeyReader(strings.NewReader(keys))
	mover := archive.NewMover(req.ArchiveDir, req.Root, nil)
	store := history.NewStore(req.ArchiveDir, nil)
	factory := detect.Factory(func() (detect.Detector, error) {
		return detect.Func(func(ctx context.Context, path string) (bool, error) {
			return strings.Contains(filepath.Base(path), "person"), nil
		}), nil
	})
	dispatcher := scan.NewDispatcher(req.MaxWorkers, factory, nil)
	controller := scan.NewDecisionController(&nullRenderer{}, console, reader, mover, nil)
	progress := output.NewClassifyProgress(false)

	return scan.NewOrchestrator(req, store, dispatcher, controller, mover, console, progress, nil)
}

// History loads the current processed-directory set
func (h *TestHelper) History() history.Set {
	return history.NewStore(h.archiveDir, nil).Load()
}

// nullRenderer is a no-op image renderer for testing
type nullRenderer struct{}

func (r *nullRenderer) Display(path string) {}

func TestScan_NestedTreeWithMirroring(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	h.CreatePhoto("person_top.jpg", []byte("top"))
	h.CreatePhoto("holiday/person_beach.jpg", []byte("beach"))
	h.CreatePhoto("holiday/sunset.jpg", []byte("sunset"))
	h.CreatePhoto("holiday/2024/person_group.png", []byte("group"))

	// Directories are visited in sorted order: the root first, then
	// holiday, then holiday/2024. Archive every match.
	engine := h.NewEngine(h.NewRequest(), "aaa")
	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Archived files mirror their position under the root.
	for _, name := range []string{
		"person_top.jpg",
		filepath.Join("holiday", "person_beach.jpg"),
		filepath.Join("holiday", "2024", "person_group.png"),
	} {
		if !h.ArchivedExists(name) {
			t.Errorf("archive should mirror %s", name)
		}
		if h.PhotoExists(name) {
			t.Errorf("%s should be gone from the photos tree", name)
		}
	}
	if !h.PhotoExists(filepath.Join("holiday", "sunset.jpg")) {
		t.Error("non-matching file must stay in place")
	}

	content, err := h.ReadArchived(filepath.Join("holiday", "person_beach.jpg"))
	if err != nil {
		t.Fatalf("ReadArchived() error = %v", err)
	}
	if !bytes.Equal(content, []byte("beach")) {
		t.Errorf("archived content = %s, want beach", string(content))
	}

	if report.Stats.FilesClassified != 4 {
		t.Errorf("FilesClassified = %d, want 4", report.Stats.FilesClassified)
	}
	if report.Stats.FilesArchived != 3 {
		t.Errorf("FilesArchived = %d, want 3", report.Stats.FilesArchived)
	}
	if report.Stats.DirsVisited != 3 {
		t.Errorf("DirsVisited = %d, want 3", report.Stats.DirsVisited)
	}
}

func TestScan_ResumeAcrossRuns(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	h.CreatePhoto("done/person_old.jpg", []byte("old"))

	// First run processes the subfolder and commits it.
	engine := h.NewEngine(h.NewRequest(), "kk")
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if !h.History().Contains("done") {
		t.Fatal("done should be committed after the first run")
	}

	// Second run confirms the target re-scan; the committed subfolder is
	// skipped but the new one is visited.
	h.CreatePhoto("fresh/person_new.jpg", []byte("new"))
	engine = h.NewEngine(h.NewRequest(), "a")
	engine.SetRescanConfirm(func(ctx context.Context, dir string) (bool, error) {
		return true, nil
	})

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if report.Stats.DirsSkipped != 1 {
		t.Errorf("DirsSkipped = %d, want the committed subfolder skipped", report.Stats.DirsSkipped)
	}
	if !h.PhotoExists(filepath.Join("done", "person_old.jpg")) {
		t.Error("files in a committed subfolder must not be reclassified")
	}
	if !h.ArchivedExists(filepath.Join("fresh", "person_new.jpg")) {
		t.Error("the new subfolder's match should be archived")
	}
}

func TestScan_QuitLeavesLaterDirectoriesUncommitted(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	h.CreatePhoto("a_first/person_a.jpg", []byte("a"))
	h.CreatePhoto("z_last/person_z.jpg", []byte("z"))

	// Keep the root (empty), keep a_first's match, quit in z_last.
	engine := h.NewEngine(h.NewRequest(), "kq")
	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Quit {
		t.Error("report.Quit should be set")
	}

	set := h.History()
	if !set.Contains("a_first") {
		t.Error("completed directory should be committed before the quit")
	}
	if set.Contains("z_last") {
		t.Error("the quit directory must not be committed")
	}
	if !h.PhotoExists(filepath.Join("z_last", "person_z.jpg")) {
		t.Error("no files should move in the quit directory")
	}
}

func TestScan_ConflictSuffixesAcrossRuns(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	h.CreatePhoto("person_dup.jpg", []byte("first"))
	engine := h.NewEngine(h.NewRequest(), "a")
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	// A second file with the same name lands next to the first with a
	// numeric suffix, never overwriting it.
	h.CreatePhoto("person_dup.jpg", []byte("second"))
	engine = h.NewEngine(h.NewRequest(), "a")
	engine.SetRescanConfirm(func(ctx context.Context, dir string) (bool, error) {
		return true, nil
	})
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if !h.ArchivedExists("person_dup.jpg") || !h.ArchivedExists("person_dup_1.jpg") {
		t.Fatal("both copies should exist in the archive")
	}
	first, _ := h.ReadArchived("person_dup.jpg")
	second, _ := h.ReadArchived("person_dup_1.jpg")
	if !bytes.Equal(first, []byte("first")) || !bytes.Equal(second, []byte("second")) {
		t.Errorf("archive copies = %q / %q, want first / second", first, second)
	}
}

func TestScan_SpecialFolderArchivedOnce(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	h.CreatePhoto(filepath.Join(".picasaoriginals", "person_backup.jpg"), []byte("backup"))
	h.CreatePhoto("person_main.jpg", []byte("main"))

	engine := h.NewEngine(h.NewRequest(), "k")
	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !h.ArchivedExists(filepath.Join(".picasaoriginals", "person_backup.jpg")) {
		t.Error("backup folder should be archived wholesale")
	}
	if report.Stats.DirsArchived != 1 {
		t.Errorf("DirsArchived = %d, want 1", report.Stats.DirsArchived)
	}
	if report.Stats.FilesClassified != 1 {
		t.Errorf("FilesClassified = %d, backup contents must not be classified", report.Stats.FilesClassified)
	}

	// A repeat run must not touch the already-archived folder again.
	h.CreatePhoto(filepath.Join(".picasaoriginals", "person_late.jpg"), []byte("late"))
	engine = h.NewEngine(h.NewRequest(), "k")
	engine.SetRescanConfirm(func(ctx context.Context, dir string) (bool, error) {
		return true, nil
	})
	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if h.ArchivedExists(filepath.Join(".picasaoriginals_1", "person_late.jpg")) {
		t.Error("a committed backup folder must not be moved again")
	}
}

func TestScan_ContextCancellation(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	for i := 0; i < 5; i++ {
		h.CreatePhoto("person_"+string(rune('a'+i))+".jpg", []byte("x"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := h.NewEngine(h.NewRequest(), "")
	report, err := engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Interrupted {
		t.Error("report.Interrupted should be set on a cancelled context")
	}
	if h.History().Contains(history.Key(h.photosDir, h.photosDir)) {
		t.Error("an interrupted directory must not be committed")
	}
}
