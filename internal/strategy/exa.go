package strategy

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/buger/jsonparser"
	"github.com/use-agent/purify-reader/internal/models"
)

const exaMCPURL = "https://mcp.exa.ai/mcp"

// exaMaxCharacters caps the crawled page text the Exa server returns,
// per spec's crawling_exa argument shape.
const exaMaxCharacters = 50000

// exaSessionMu guards the process-wide Exa MCP session id; the server
// issues one per "initialize" call and expects it echoed on every
// subsequent request via Mcp-Session-Id.
var (
	exaSessionMu sync.Mutex
	exaSessionID string
	exaRequestID int64
)

// exaFailureMarkers are substrings Exa's crawl tool embeds in an
// otherwise-200 response body to signal a soft failure.
var exaFailureMarkers = []string{
	"CRAWL_LIVECRAWL_TIMEOUT",
	"CRAWL_NOT_FOUND",
	"CRAWL_ROBOTS_DISALLOWED",
}

// Exa drives the hosted Exa MCP server over JSON-RPC 2.0 framed as
// Server-Sent Events: an "initialize" call establishes a session id, then
// a "tools/call" invokes the crawl tool against target and the resulting
// page text/markdown is extracted from the SSE "data:" payload with
// jsonparser (the full response is a nested, partially dynamic JSON-RPC
// envelope not worth a bespoke struct tree).
func Exa(ctx context.Context, target string) models.StrategyResult {
	const id = models.StrategyExa

	if err := waitLimiter(ctx, exaLimiter); err != nil {
		return fail(id, err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := exaEnsureSession(ctx); err != nil {
		return fail(id, fmt.Errorf("exa session: %w", err))
	}

	reqID := atomic.AddInt64(&exaRequestID, 1)
	params := fmt.Sprintf(
		`{"name":"crawling_exa","arguments":{"url":%s,"maxCharacters":%d}}`,
		jsonString(target), exaMaxCharacters,
	)
	payload := fmt.Sprintf(
		`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":%s}`,
		reqID, params,
	)

	body, err := exaPost(ctx, payload, true)
	if err != nil {
		exaClearSession()
		return fail(id, fmt.Errorf("tools/call: %w", err))
	}

	text, err := exaExtractText(body)
	if err != nil {
		exaClearSession()
		return fail(id, fmt.Errorf("extract result: %w", err))
	}

	for _, marker := range exaFailureMarkers {
		if strings.Contains(text, marker) {
			return failMsg(id, "exa crawl failed: "+marker)
		}
	}
	if strings.TrimSpace(text) == "" {
		return failMsg(id, "empty exa result")
	}

	return models.StrategyResult{
		Strategy: id,
		Success:  true,
		Markdown: text,
	}
}

// exaClearSession drops the cached session id after a failed call, per
// spec's "on error cleared so the next call re-initializes" rule.
func exaClearSession() {
	exaSessionMu.Lock()
	exaSessionID = ""
	exaSessionMu.Unlock()
}

func exaEnsureSession(ctx context.Context) error {
	exaSessionMu.Lock()
	defer exaSessionMu.Unlock()
	if exaSessionID != "" {
		return nil
	}

	reqID := atomic.AddInt64(&exaRequestID, 1)
	payload := fmt.Sprintf(
		`{"jsonrpc":"2.0","id":%d,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"purify-reader","version":"1"}}}`,
		reqID,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, exaMCPURL, bytes.NewReader([]byte(payload)))
	if err != nil {
		return err
	}
	exaSetHeaders(req)

	resp, err := sharedClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get("Mcp-Session-Id"); sid != "" {
		exaSessionID = sid
	}
	if _, err := readSSEBody(resp); err != nil {
		return err
	}
	if exaSessionID == "" {
		return fmt.Errorf("no session id returned")
	}
	return nil
}

// exaPost issues a JSON-RPC request body against the MCP endpoint,
// optionally attaching the session id, and returns the decoded SSE
// payload bytes.
func exaPost(ctx context.Context, payload string, withSession bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, exaMCPURL, bytes.NewReader([]byte(payload)))
	if err != nil {
		return nil, err
	}
	exaSetHeaders(req)
	if withSession {
		exaSessionMu.Lock()
		sid := exaSessionID
		exaSessionMu.Unlock()
		if sid != "" {
			req.Header.Set("Mcp-Session-Id", sid)
		}
	}

	resp, err := sharedClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return readSSEBody(resp)
}

func exaSetHeaders(req *http.Request) {
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
}

// readSSEBody reads an SSE stream and returns the concatenated payload of
// every "data: " line, since the MCP server may split one JSON-RPC
// response across multiple events.
func readSSEBody(resp *http.Response) ([]byte, error) {
	var out bytes.Buffer
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			out.WriteString(data)
		} else if data, ok := strings.CutPrefix(line, "data:"); ok {
			out.WriteString(data)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// exaExtractText walks the JSON-RPC result envelope
// ("result" -> "content" -> [0] -> "text") with jsonparser, avoiding a
// full struct decode of a schema the Exa server can extend at any time.
func exaExtractText(body []byte) (string, error) {
	content, _, _, err := jsonparser.Get(body, "result", "content", "[0]", "text")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func jsonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
