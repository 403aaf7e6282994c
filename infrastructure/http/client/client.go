// Package client is a thin HTTP client for the chat API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Participant is a registered user as returned by GET /participants.
type Participant struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

// Message is one entry of GET /messages.
type Message struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// StatusError carries a non 2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat server answered %d: %s", e.Code, e.Message)
}

type ChatClient struct {
	baseURL string
	http    *http.Client
}

func NewChatClient(baseURL string, timeout time.Duration) *ChatClient {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *ChatClient) Register(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/participants", "", map[string]string{"name": name}, nil)
}

func (c *ChatClient) Participants(ctx context.Context) ([]Participant, error) {
	var participants []Participant
	err := c.do(ctx, http.MethodGet, "/participants", "", nil, &participants)
	return participants, err
}

// Send posts a public message when to is "all", a private one otherwise.
func (c *ChatClient) Send(ctx context.Context, from, to, text string) error {
	kind := "private_message"
	if to == "all" {
		kind = "message"
	}
	body := map[string]string{"to": to, "text": text, "type": kind}
	return c.do(ctx, http.MethodPost, "/messages", from, body, nil)
}

// Messages returns what user may read, newest first. A limit <= 0 is omitted.
func (c *ChatClient) Messages(ctx context.Context, user string, limit int) ([]Message, error) {
	path := "/messages"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var messages []Message
	err := c.do(ctx, http.MethodGet, path, user, nil, &messages)
	return messages, err
}

func (c *ChatClient) Heartbeat(ctx context.Context, user string) error {
	return c.do(ctx, http.MethodPost, "/status", user, nil, nil)
}

func (c *ChatClient) do(ctx context.Context, method, path, user string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("User", user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &StatusError{Code: resp.StatusCode, Message: failure.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
