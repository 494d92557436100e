package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/docproc/internal/models"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// extractViaHTTP uploads the file at path to a running docproc server.
func extractViaHTTP(ctx context.Context, serverURL, path string) (*models.DocumentResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(serverURL, "/")+"/api/documents", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result models.DocumentResult
	if err := doJSON(req, &result); err != nil {
		return nil, err
	}
	if result.Lines == nil {
		result.Lines = []string{}
	}
	return &result, nil
}

// statusViaHTTP fetches GET /api/status from a running docproc server.
func statusViaHTTP(ctx context.Context, serverURL string) (*models.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(serverURL, "/")+"/api/status", nil)
	if err != nil {
		return nil, err
	}
	var status models.Status
	if err := doJSON(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// doJSON sends req tagged with a fresh request ID and decodes a 200 response
// into out. Other statuses are returned as errors carrying the server's message.
func doJSON(req *http.Request, out interface{}) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s (request %s)", resp.StatusCode, apiErr.Error, requestID)
		}
		return fmt.Errorf("server returned %d: %s (request %s)", resp.StatusCode, strings.TrimSpace(string(b)), requestID)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
