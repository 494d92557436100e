package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

const defaultBinary = "tesseract"

// CLIEngine runs the tesseract executable, feeding the image on stdin and
// reading the text from stdout. It needs no cgo and honors ctx cancellation.
type CLIEngine struct {
	binary string
	opts   Options
}

// NewCLIEngine returns an engine that shells out to opts.BinaryPath, or to
// "tesseract" on PATH when unset.
func NewCLIEngine(opts Options) *CLIEngine {
	bin := opts.BinaryPath
	if bin == "" {
		bin = defaultBinary
	}
	return &CLIEngine{binary: bin, opts: opts}
}

// Name returns "tesseract-cli".
func (e *CLIEngine) Name() string { return string(EngineTesseractCLI) }

// Available reports whether the binary can be found.
func (e *CLIEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Recognize runs one tesseract process over image.
func (e *CLIEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, e.args()...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return stdout.String(), nil
}

func (e *CLIEngine) args() []string {
	args := []string{"stdin", "stdout"}
	if len(e.opts.Languages) > 0 {
		args = append(args, "-l", strings.Join(e.opts.Languages, "+"))
	}
	if e.opts.PageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(e.opts.PageSegMode))
	}
	if e.opts.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(e.opts.DPI))
	}
	keys := make([]string, 0, len(e.opts.Variables))
	for k := range e.opts.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-c", k+"="+e.opts.Variables[k])
	}
	return args
}
