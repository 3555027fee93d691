package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/NasaVasa/eventdash/internal/domain"
)

func (c *Client) Alerts(ctx context.Context, filter domain.AlertFilter, page int) ([]domain.Row, error) {
	query := url.Values{
		"days": {strconv.Itoa(filter.Days)},
		"page": {strconv.Itoa(page)},
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	var payload rowsResponse
	if err := c.do(ctx, http.MethodGet, "/alerts", "/alerts?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) Alert(ctx context.Context, alertID string) (*domain.AlertDetail, error) {
	var payload domain.AlertDetail
	if err := c.do(ctx, http.MethodGet, "/alert/{id}", alertPath(alertID, ""), nil, &payload); err != nil {
		return nil, err
	}
	if payload.Alert.Len() == 0 {
		return nil, domain.ErrNotFound
	}
	return &payload, nil
}

func (c *Client) MarkReviewed(ctx context.Context, alertID string) error {
	return c.do(ctx, http.MethodPatch, "/alert/{id}/reviewed", alertPath(alertID, "/reviewed"), nil, nil)
}

func (c *Client) SetAlertStatus(ctx context.Context, alertID string, status domain.AlertStatus) error {
	return c.do(ctx, http.MethodPatch, "/alert/{id}/status", alertPath(alertID, "/status"), statusRequest{Status: status}, nil)
}

func (c *Client) AlertTransaction(ctx context.Context, alertID string) (*domain.Row, error) {
	var payload transactionResponse
	if err := c.do(ctx, http.MethodGet, "/alert/{id}/transaction", alertPath(alertID, "/transaction"), nil, &payload); err != nil {
		return nil, err
	}
	if payload.Transaction == nil {
		return nil, domain.ErrNotFound
	}
	return payload.Transaction, nil
}

func alertPath(alertID, suffix string) string {
	return "/alert/" + url.PathEscape(alertID) + suffix
}
