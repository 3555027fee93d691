package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Client talks to the event-log REST API.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *Metrics
	logger  *zap.Logger
}

// NewClient builds a client. A zero timeout leaves requests unbounded apart
// from their context.
func NewClient(baseURL string, timeout time.Duration, metrics *Metrics, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		metrics: metrics,
		logger:  logger,
	}
}

func (c *Client) Events(ctx context.Context, userID string, full bool) (*domain.EventsResult, error) {
	route, endpoint := "/events/{id}", "/events/"+url.PathEscape(userID)
	if full {
		route, endpoint = "/events/full/{id}", "/events/full/"+url.PathEscape(userID)
	}
	var payload domain.EventsResult
	if err := c.do(ctx, http.MethodGet, route, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) RandomUserIDs(ctx context.Context) ([]string, error) {
	var payload userIDsResponse
	if err := c.do(ctx, http.MethodGet, "/random_user_ids", "/random_user_ids", nil, &payload); err != nil {
		return nil, err
	}
	return payload.UserIDs, nil
}

func (c *Client) Browse(ctx context.Context, limit int) (*domain.BrowseResult, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var payload domain.BrowseResult
	if err := c.do(ctx, http.MethodGet, "/browse", "/browse?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) RunQuery(ctx context.Context, query string) (*domain.QueryResult, error) {
	var payload domain.QueryResult
	if err := c.do(ctx, http.MethodPost, "/run-query", "/run-query", queryRequest{Query: query}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Transactions(ctx context.Context, days, page int) ([]domain.Row, error) {
	query := url.Values{
		"days": {strconv.Itoa(days)},
		"page": {strconv.Itoa(page)},
	}
	var payload rowsResponse
	if err := c.do(ctx, http.MethodGet, "/transactions", "/transactions?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) Health(ctx context.Context) (*domain.Health, error) {
	var payload domain.Health
	if err := c.do(ctx, http.MethodGet, "/health", "/health", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) DemoQuery(ctx context.Context) (*domain.DemoQuery, error) {
	var payload domain.DemoQuery
	if err := c.do(ctx, http.MethodGet, "/demo-query", "/demo-query", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Aggregate(ctx context.Context, kind domain.AggregateKind) ([]domain.Row, error) {
	endpoint := "/dashboard/alerts_by_" + string(kind)
	var payload rowsResponse
	if err := c.do(ctx, http.MethodGet, endpoint, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) RefreshAggregate(ctx context.Context, kind domain.AggregateKind) error {
	endpoint := "/refresh_alerts_by_" + string(kind)
	return c.do(ctx, http.MethodPost, endpoint, endpoint, nil, nil)
}

// do issues one request. route is the endpoint template used for metrics
// labels; endpoint is the concrete path and query.
func (c *Client) do(ctx context.Context, method, route, endpoint string, body any, out any) error {
	target := c.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s", method, route)
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, route)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	c.logger.Info("api request start", zap.String("method", method), zap.String("url", target))
	response, err := c.client.Do(request)
	if err != nil {
		c.metrics.observe(route, "error", time.Since(start), true)
		c.logger.Error("api request failed", zap.String("method", method), zap.String("url", target), zap.Error(err))
		return errors.Wrapf(err, "%s %s", method, route)
	}
	defer response.Body.Close()

	elapsed := time.Since(start)
	failed := response.StatusCode < 200 || response.StatusCode >= 300
	c.metrics.observe(route, strconv.Itoa(response.StatusCode), elapsed, failed)
	c.logger.Info(
		"api request complete",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", elapsed),
	)

	if failed {
		return decodeStatusError(response)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return errors.Mark(errors.Wrapf(err, "decode %s %s", method, route), domain.ErrMalformedResponse)
	}
	return nil
}

func decodeStatusError(response *http.Response) error {
	statusErr := &domain.APIError{Status: response.StatusCode}
	data, err := io.ReadAll(io.LimitReader(response.Body, 64<<10))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return statusErr
	}
	var payload errorResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		statusErr.Detail = strings.TrimSpace(string(data))
		return statusErr
	}
	statusErr.Detail = string(payload.Detail)
	if statusErr.Detail == "" {
		statusErr.Detail = payload.Error
	}
	return statusErr
}
