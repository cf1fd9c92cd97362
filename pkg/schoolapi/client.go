// Package schoolapi - клиент SQL-шлюза школьной информационной системы.
// Шлюз принимает POST {"sql": "..."} и возвращает строки результата в JSON.
package schoolapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const maxErrorBody = 512

// APIError - ответ шлюза с кодом не 2xx
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("school api: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Query выполняет SQL-запрос и возвращает строки результата.
// Шлюз отдает либо массив, либо объект {"0": {...}, "1": {...}}.
func (c *Client) Query(ctx context.Context, sql string) ([]json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"sql": sql})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("sql", sql).Debug("Executing school api query")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := string(respBody)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: text}
	}

	rows, err := DecodeRows(respBody)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return rows, nil
}

// DecodeRows приводит ответ шлюза к списку строк
func DecodeRows(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []json.RawMessage{}, nil
	}

	switch data[0] {
	case '[':
		var rows []json.RawMessage
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []json.RawMessage{}
		}
		return rows, nil

	case '{':
		var byKey map[string]json.RawMessage
		if err := json.Unmarshal(data, &byKey); err != nil {
			return nil, err
		}

		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return keyLess(keys[i], keys[j])
		})

		rows := make([]json.RawMessage, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, byKey[k])
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", data[0])
	}
}

// keyLess - числовые ключи по значению и раньше нечисловых, остальные по алфавиту
func keyLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
