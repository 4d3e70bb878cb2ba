package conversation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// Tool is an external collaborator consulted during a turn (calendar
// availability, contact lookup). Tool failures never fail the turn; the
// engine logs them and answers without the tool's output.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, utterance string) (string, error)
}

// UnavailableTool stands in for a collaborator whose configuration is
// missing. It exists so the engine can report the capability as
// unavailable instead of carrying a nil client around.
type UnavailableTool struct {
	name string
}

func (t UnavailableTool) Name() string { return t.name }

func (t UnavailableTool) Invoke(context.Context, string) (string, error) {
	return "", &kbmodel.ConfigError{Component: t.name, Reason: "capability not configured"}
}

// httpTool calls a narrow JSON-over-HTTP collaborator endpoint with the
// caller's utterance as a query parameter.
type httpTool struct {
	name    string
	baseURL string
	client  *http.Client
}

// NewCalendarTool builds the appointment-availability collaborator. An
// empty endpoint yields the unavailable variant.
func NewCalendarTool(endpoint string) Tool {
	return newHTTPTool("calendar", endpoint)
}

// NewContactTool builds the contact-directory collaborator.
func NewContactTool(endpoint string) Tool {
	return newHTTPTool("contacts", endpoint)
}

func newHTTPTool(name, endpoint string) Tool {
	if endpoint == "" {
		return UnavailableTool{name: name}
	}
	return &httpTool{
		name:    name,
		baseURL: endpoint,
		client:  &http.Client{Timeout: config.ProviderCallTimeout},
	}
}

func (t *httpTool) Name() string { return t.name }

func (t *httpTool) Invoke(ctx context.Context, utterance string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.baseURL+"?q="+url.QueryEscape(utterance), nil)
	if err != nil {
		return "", kbmodel.WrapProvider(t.name, err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", kbmodel.WrapProvider(t.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", kbmodel.WrapProvider(t.name, fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", kbmodel.WrapProvider(t.name, err)
	}
	return string(body), nil
}
