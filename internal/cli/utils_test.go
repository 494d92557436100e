package cli

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/docproc/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"raw", OutputRaw, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteDocumentResult_JSON(t *testing.T) {
	result := &models.DocumentResult{Text: "Hello\n\nWorld\n", Lines: []string{"Hello", "World"}}
	var buf bytes.Buffer
	if err := WriteDocumentResult(&buf, "scan.png", result, OutputJSON); err != nil {
		t.Fatalf("WriteDocumentResult(json): %v", err)
	}
	var decoded models.DocumentResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(&decoded, result) {
		t.Errorf("decoded = %+v, want %+v", decoded, result)
	}
}

func TestWriteDocumentResult_JSON_emptyLines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDocumentResult(&buf, "blank.png", &models.DocumentResult{Lines: []string{}}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"lines": []`) {
		t.Errorf("lines should encode as an empty array:\n%s", buf.String())
	}
}

func TestWriteDocumentResult_text(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "line"
	}
	var buf bytes.Buffer
	if err := WriteDocumentResult(&buf, "scan.png", &models.DocumentResult{Lines: lines}, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "scan.png: 12 lines") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, " 1  line\n") || !strings.Contains(out, "12  line\n") {
		t.Errorf("lines should be numbered and aligned:\n%s", out)
	}
}

func TestWriteDocumentResult_textEmpty(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteDocumentResult(&buf, "blank.png", &models.DocumentResult{Lines: []string{}}, OutputText)
	if !strings.Contains(buf.String(), "(no text recognized)") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteDocumentResult_raw(t *testing.T) {
	var buf bytes.Buffer
	result := &models.DocumentResult{Text: "a\n\n  b \n", Lines: []string{"a", "  b "}}
	if err := WriteDocumentResult(&buf, "x.png", result, OutputRaw); err != nil {
		t.Fatal(err)
	}
	if buf.String() != result.Text {
		t.Errorf("raw output = %q, want %q", buf.String(), result.Text)
	}
}

func TestWriteDocumentResult_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteDocumentResult(&buf, "x.png", &models.DocumentResult{Lines: []string{"only"}}, OutputFormat("xml"))
	if !strings.Contains(buf.String(), "x.png: 1 lines") {
		t.Errorf("unknown format should fall back to text, got %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	status := &models.Status{
		Engine:       "tesseract",
		AllowedTypes: []string{"jpeg", "jpg", "pdf", "png"},
		MaxUploadMB:  16,
		Staging:      models.StagingStatus{Directory: "/srv/uploads", Naming: "overwrite", Files: 3, Bytes: 1536},
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"tesseract", "jpeg, jpg, pdf, png", "/srv/uploads", "3 (1.5 KiB)", "16 MiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, status, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.Status
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&decoded, status) {
		t.Errorf("decoded = %+v", decoded)
	}
}
