package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"onnxgate/internal/api"
)

// client is a thin HTTP client for the daemon API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(address string) *client {
	return &client{
		baseURL: "http://" + address,
		http:    &http.Client{Timeout: 10 * time.Minute},
	}
}

func (c *client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var out api.HealthResponse
	if err := c.getJSON(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var out api.StatusResponse
	if err := c.getJSON(ctx, "/api/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) History(ctx context.Context, limit int) (*api.HistoryResponse, error) {
	var out api.HistoryResponse
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Convert uploads a model artifact and returns the converted bytes.
func (c *client) Convert(ctx context.Context, payload []byte, filename, sourceFormat string, opset int) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := writer.WriteField("source_format", sourceFormat); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if opset > 0 {
		if err := writer.WriteField("opset", strconv.Itoa(opset)); err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/convert", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	converted, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read converted model: %w", err)
	}
	return converted, nil
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var payload api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == "" {
		return fmt.Errorf("daemon responded with status %d", resp.StatusCode)
	}
	if payload.Hint != "" {
		return fmt.Errorf("%s (%s)", payload.Error, payload.Hint)
	}
	return errors.New(payload.Error)
}

func wrapDialError(err error, baseURL string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; verify the daemon is running", baseURL)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}
