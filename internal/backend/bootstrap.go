package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html"

	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
)

// Attributes on <body> that carry the initial state.
const (
	attrSessionState = "data-initial-session-state"
	attrDisplayNames = "data-model-display-names"
	attrModelNames   = "data-model-names-list"
)

// Bootstrap loads the index page and reads the session snapshot the server
// embeds in it. It is also how a full reload is done after a model switch.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	const op = pErrors.Op("backend.Bootstrap")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, pErrors.Transport(op, err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pErrors.Transport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pErrors.Transport(op, fmt.Errorf("index returned HTTP %d", resp.StatusCode))
	}

	b, err := ParseBootstrap(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, pErrors.Transport(op, err)
	}
	logger.WithComponent("backend").Info("session loaded",
		"activeTab", b.Session.ActiveTab,
		"results", len(b.Session.Results),
		"references", len(b.Session.ReferenceImages))
	return b, nil
}

// ParseBootstrap extracts the data-* attributes from the <body> element of r.
func ParseBootstrap(r io.Reader) (*Bootstrap, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil {
		return nil, fmt.Errorf("index page has no body")
	}

	attrs := make(map[string]string, len(body.Attr))
	for _, a := range body.Attr {
		attrs[a.Key] = a.Val
	}

	b := &Bootstrap{}
	if err := decodeAttr(attrs, attrSessionState, &b.Session); err != nil {
		return nil, err
	}
	if err := decodeAttr(attrs, attrDisplayNames, &b.DisplayNames); err != nil {
		return nil, err
	}
	if err := decodeAttr(attrs, attrModelNames, &b.ModelNames); err != nil {
		return nil, err
	}
	b.Session.Results = nonNil(b.Session.Results)
	b.Session.ReferenceImages = nonNil(b.Session.ReferenceImages)
	return b, nil
}

func decodeAttr(attrs map[string]string, key string, out any) error {
	raw, ok := attrs[key]
	if !ok {
		return fmt.Errorf("body is missing %s", key)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}
