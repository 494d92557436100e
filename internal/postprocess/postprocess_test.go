package postprocess

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestPostprocess(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank lines dropped", "Hello\n\nWorld\n   \n", []string{"Hello", "World"}},
		{"whitespace only", " \t\n\n  ", []string{}},
		{"single line", "Total: 42", []string{"Total: 42"}},
		{"inner spacing kept", "  indented\nlast  ", []string{"  indented", "last  "}},
		{"form feed page break", "page one\n\f\npage two", []string{"page one", "page two"}},
		{"crlf", "a\r\n\r\nb", []string{"a\r", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Postprocess(tt.raw)
			if got.Text != tt.raw {
				t.Errorf("Text = %q, want %q", got.Text, tt.raw)
			}
			if !reflect.DeepEqual(got.Lines, tt.want) {
				t.Errorf("Lines = %q, want %q", got.Lines, tt.want)
			}
		})
	}
}

func TestPostprocess_idempotentOnLines(t *testing.T) {
	inputs := []string{
		"",
		"Hello\n\nWorld\n   \n",
		"\n\n  a  \n\tb\n\n c",
		"INVOICE #1\n\nDate: 2024-01-01\n\n\nTotal 10.00\n",
	}
	for _, raw := range inputs {
		first := Postprocess(raw)
		second := Postprocess(strings.Join(first.Lines, "\n"))
		if !reflect.DeepEqual(first.Lines, second.Lines) {
			t.Errorf("re-running on joined lines changed result: %q -> %q", first.Lines, second.Lines)
		}
	}
}

func TestPostprocess_emptyLinesEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(Postprocess(""))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"text":"","lines":[]}` {
		t.Errorf("got %s", data)
	}
}
