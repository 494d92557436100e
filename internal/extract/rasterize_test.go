package extract

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPdftoppmRasterizer_args(t *testing.T) {
	r := NewPdftoppmRasterizer("", 0)
	if r.Binary != "pdftoppm" || r.DPI != 300 {
		t.Fatalf("defaults: %+v", r)
	}
	got := r.args("in.pdf", "/tmp/x/page", 4)
	want := []string{"-png", "-r", "300", "-f", "1", "-l", "4", "in.pdf", "/tmp/x/page"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
	got = NewPdftoppmRasterizer("/usr/bin/pdftoppm", 150).args("in.pdf", "p", 0)
	want = []string{"-png", "-r", "150", "in.pdf", "p"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestPdftoppmRasterizer_missingBinary(t *testing.T) {
	r := NewPdftoppmRasterizer("/nonexistent/pdftoppm", 72)
	if _, err := r.Rasterize(context.Background(), "in.pdf", 1); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestPdftoppmRasterizer_rasterize(t *testing.T) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		t.Skip("pdftoppm not installed in PATH")
	}
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, buildPDF("Page text"), 0o600); err != nil {
		t.Fatal(err)
	}
	pages, err := NewPdftoppmRasterizer("", 72).Rasterize(context.Background(), path, 1)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if _, err := prepareImage(pages[0], 0); err != nil {
		t.Errorf("rendered page is not a decodable image: %v", err)
	}
}
