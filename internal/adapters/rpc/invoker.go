// Package rpc calls named remote procedures on the booking backend. The
// procedures are opaque: the admin only sees a name, an argument map and a
// result payload.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"campdesk/internal/gateway"
)

// Invoker executes a named remote procedure.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// HTTPInvoker posts procedure calls as JSON to a single backend endpoint.
type HTTPInvoker struct {
	baseURL string
	client  *http.Client
}

// NewHTTPInvoker creates an invoker for the given backend base URL.
func NewHTTPInvoker(baseURL string) *HTTPInvoker {
	return &HTTPInvoker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type callEnvelope struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type resultEnvelope struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Invoke calls the named procedure and decodes its payload.
// POST: a payload-level failure surfaces as *gateway.ProcedureError even
// when the transport call itself succeeded
func (i *HTTPInvoker) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	body, err := json.Marshal(callEnvelope{Name: name, Args: args})
	if err != nil {
		return nil, gateway.Wrap("invoke", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, gateway.Wrap("invoke", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, gateway.Wrap("invoke", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, gateway.Wrap("invoke", name, fmt.Errorf("backend returned status %d", resp.StatusCode))
	}

	var result resultEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, gateway.Wrap("invoke", name, err)
	}
	if !result.Success {
		return nil, &gateway.ProcedureError{Name: name, Message: result.Error}
	}
	return result.Data, nil
}

// NoopInvoker succeeds with an empty payload. Used in development when no
// backend is configured.
type NoopInvoker struct{}

// Invoke returns an empty payload.
func (NoopInvoker) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}

// RecorderInvoker records calls and returns scripted results. Test double.
type RecorderInvoker struct {
	Calls   []RecordedCall
	Results map[string]map[string]any
	Errs    map[string]error
}

// RecordedCall captures one Invoke.
type RecordedCall struct {
	Name string
	Args map[string]any
}

// Invoke records the call and replays the scripted result for the name.
func (r *RecorderInvoker) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	r.Calls = append(r.Calls, RecordedCall{Name: name, Args: args})
	if err, ok := r.Errs[name]; ok {
		return nil, err
	}
	if res, ok := r.Results[name]; ok {
		return res, nil
	}
	return map[string]any{}, nil
}
