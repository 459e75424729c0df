package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // json | text
	HTTP      *http.Client
	Out       io.Writer
}

// apiError es el envelope de error del Hub.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e *apiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (c *client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// call ejecuta el request; un status no-2xx vuelve como *apiError si el body es el envelope.
func (c *client) call(ctx context.Context, method, path string, payload any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("hubctl: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hubctl: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(body, ae) == nil && ae.Code != "" {
			return ae
		}
		return fmt.Errorf("hubctl: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	c.print(resp.StatusCode, body)
	return nil
}

func (c *client) print(status int, body []byte) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		fmt.Fprintf(c.Out, "status=%d\n", status)
		return
	}
	if c.OutFormat == "json" {
		var pretty bytes.Buffer
		if json.Indent(&pretty, body, "", "  ") == nil {
			fmt.Fprintln(c.Out, pretty.String())
			return
		}
	}
	fmt.Fprintln(c.Out, string(body))
}

func tenantPath(idOrSlug string) string {
	return "/tenants/" + url.PathEscape(idOrSlug)
}
