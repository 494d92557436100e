package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/hyperjump/docproc/internal/extract"
	"github.com/hyperjump/docproc/internal/models"
	"github.com/hyperjump/docproc/internal/ocr"
	"github.com/hyperjump/docproc/internal/staging"
	"go.uber.org/zap"
)

func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestPipeline(t *testing.T, engine ocr.Engine, opts ...Option) (*Pipeline, staging.Location) {
	t.Helper()
	loc := staging.Location(filepath.Join(t.TempDir(), "uploads"))
	p := New(staging.NewStager(loc), extract.NewExtractor(engine), append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	return p, loc
}

func stagedFiles(t *testing.T, loc staging.Location) []string {
	t.Helper()
	entries, err := os.ReadDir(loc.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestProcess_success(t *testing.T) {
	p, loc := newTestPipeline(t, ocr.NewMockEngine("Hello\n\nWorld\n   \n"))
	got, err := p.Process(context.Background(), blankPNG(t), "note.png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := &models.DocumentResult{Text: "Hello\n\nWorld\n   \n", Lines: []string{"Hello", "World"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %+v, want %+v", got, want)
	}
	if files := stagedFiles(t, loc); len(files) != 1 || files[0] != "note.png" {
		t.Errorf("staged files = %v", files)
	}
}

func TestProcess_blankImageYieldsEmptyResult(t *testing.T) {
	p, _ := newTestPipeline(t, ocr.NoopEngine{})
	got, err := p.Process(context.Background(), blankPNG(t), "note.png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got.Text != "" || got.Lines == nil || len(got.Lines) != 0 {
		t.Errorf("Process() = %#v, want empty text and lines", got)
	}
}

func TestProcess_invalidInputStagesNothing(t *testing.T) {
	engine := ocr.NewMockEngine("x")
	p, loc := newTestPipeline(t, engine)
	for _, name := range []string{"note.exe", "", "noextension"} {
		_, err := p.Process(context.Background(), []byte("MZ"), name)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Process(%q) error = %v, want ErrInvalidInput", name, err)
		}
		var perr *Error
		if !errors.As(err, &perr) || perr.Stage != StageValidated {
			t.Errorf("Process(%q) stage = %+v, want %s", name, perr, StageValidated)
		}
	}
	if files := stagedFiles(t, loc); len(files) != 0 {
		t.Errorf("files staged after rejection: %v", files)
	}
	if engine.Calls() != 0 {
		t.Errorf("engine called %d times", engine.Calls())
	}
}

func TestProcess_stagingFailed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	engine := ocr.NewMockEngine("x")
	p := New(staging.NewStager(staging.Location(filepath.Join(blocker, "uploads"))), extract.NewExtractor(engine))

	_, err := p.Process(context.Background(), blankPNG(t), "note.png")
	if !errors.Is(err, ErrStagingFailed) {
		t.Fatalf("error = %v, want ErrStagingFailed", err)
	}
	if !errors.Is(err, staging.ErrStagingFailed) {
		t.Errorf("error %v does not carry the staging error", err)
	}
	if errors.Is(err, ErrExtractionFailed) || errors.Is(err, ErrInvalidInput) {
		t.Errorf("error %v matches more than one kind", err)
	}
	var perr *Error
	if errors.As(err, &perr) && perr.Stage != StageStaged {
		t.Errorf("stage = %s, want %s", perr.Stage, StageStaged)
	}
	if engine.Calls() != 0 {
		t.Error("extraction ran after staging failed")
	}
}

func TestProcess_extractionFailed(t *testing.T) {
	boom := errors.New("image is corrupt")
	p, _ := newTestPipeline(t, ocr.NewFailingEngine(boom))
	_, err := p.Process(context.Background(), blankPNG(t), "note.png")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error %T is not *Error", err)
	}
	if perr.Kind != KindExtractionFailed || perr.Stage != StageExtracted {
		t.Errorf("Kind=%s Stage=%s", perr.Kind, perr.Stage)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v lost the engine message", err)
	}
}

func TestProcess_corruptImageIsExtractionFailure(t *testing.T) {
	p, _ := newTestPipeline(t, ocr.NewMockEngine("x"))
	_, err := p.Process(context.Background(), []byte{0x89, 'P', 'N', 'G', 0, 1, 2}, "broken.png")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
}

func TestProcess_removeAfterExtract(t *testing.T) {
	p, loc := newTestPipeline(t, ocr.NewMockEngine("text"), WithRemoveAfterExtract(true))
	if _, err := p.Process(context.Background(), blankPNG(t), "note.png"); err != nil {
		t.Fatal(err)
	}
	if files := stagedFiles(t, loc); len(files) != 0 {
		t.Errorf("staged files left behind: %v", files)
	}

	failing, loc2 := newTestPipeline(t, ocr.NewFailingEngine(errors.New("x")), WithRemoveAfterExtract(true))
	if _, err := failing.Process(context.Background(), blankPNG(t), "note.png"); err == nil {
		t.Fatal("expected failure")
	}
	if files := stagedFiles(t, loc2); len(files) != 0 {
		t.Errorf("staged files left behind after failure: %v", files)
	}
}

func TestProcessRequest(t *testing.T) {
	p, _ := newTestPipeline(t, ocr.NewMockEngine("a\nb"))
	got, err := p.ProcessRequest(context.Background(), &models.UploadRequest{Filename: "x.jpg", Payload: blankPNG(t)})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Lines, []string{"a", "b"}) {
		t.Errorf("Lines = %v", got.Lines)
	}
}

func TestProcess_concurrentRequests(t *testing.T) {
	p, _ := newTestPipeline(t, ocr.NewMockEngine("same text"), WithRemoveAfterExtract(false))
	p.stager = staging.NewStager(staging.Location(t.TempDir()), staging.WithNaming(staging.NamingUnique))

	payload := blankPNG(t)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Process(context.Background(), payload, "note.png"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Process: %v", err)
	}
}

func TestError_message(t *testing.T) {
	err := &Error{Kind: KindExtractionFailed, Stage: StageStaged, Err: errors.New("boom")}
	if err.Error() != "extraction_failed: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
