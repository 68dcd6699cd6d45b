// Package client es el cliente Go tipado de la API de apareamientos.
// Lo usa el comando recommend y cualquier front-end escrito en Go.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/dashboard"
	"herd-mating/internal/domain/matings"
	"herd-mating/internal/platform/httpclient"
)

type Client struct {
	http *httpclient.Client
}

// New crea un cliente contra baseURL. user viaja en X-User (vacío = default del server).
func New(baseURL, user string, timeout time.Duration) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	if hc.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	hc.Headers = map[string]string{"X-User": user}
	return &Client{http: hc}, nil
}

type BatchRequest struct {
	FemaleIDs     []int64            `json:"female_ids"`
	MaxInbreeding *float64           `json:"max_inbreeding,omitempty"`
	TopN          *int               `json:"top_n,omitempty"`
	Filters       *bulls.Filters     `json:"filters,omitempty"`
	Priorities    map[string]float64 `json:"priorities,omitempty"`
	Save          bool               `json:"save"`
	BatchName     string             `json:"batch_name,omitempty"`
}

type ManualRequest struct {
	FemaleID int64  `json:"female_id"`
	BullID   int64  `json:"bull_id"`
	Save     *bool  `json:"save,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type ListMatingsParams struct {
	Status   string
	FemaleID int64
	BullID   int64
	Page     int
	PerPage  int
}

type MatingList struct {
	Total   int                      `json:"total"`
	Page    int                      `json:"page"`
	PerPage int                      `json:"per_page"`
	Matings []matings.MatingResponse `json:"matings"`
}

func (c *Client) Batch(ctx context.Context, req BatchRequest) (matings.BatchResponse, error) {
	var out matings.BatchResponse
	err := c.http.DoJSON(ctx, http.MethodPost, "/matings/batch", nil, req, &out)
	return out, err
}

func (c *Client) Manual(ctx context.Context, req ManualRequest) (matings.ManualResponse, error) {
	var out matings.ManualResponse
	err := c.http.DoJSON(ctx, http.MethodPost, "/matings/manual", nil, req, &out)
	return out, err
}

func (c *Client) ListMatings(ctx context.Context, p ListMatingsParams) (MatingList, error) {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.FemaleID > 0 {
		q.Set("female_id", strconv.FormatInt(p.FemaleID, 10))
	}
	if p.BullID > 0 {
		q.Set("bull_id", strconv.FormatInt(p.BullID, 10))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	path := "/matings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out MatingList
	err := c.http.DoJSON(ctx, http.MethodGet, path, nil, nil, &out)
	return out, err
}

func (c *Client) GetMating(ctx context.Context, id int64) (matings.MatingResponse, error) {
	var out matings.MatingResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/matings/"+strconv.FormatInt(id, 10), nil, nil, &out)
	return out, err
}

// UpdateMating manda solo los campos presentes en fields.
func (c *Client) UpdateMating(ctx context.Context, id int64, fields map[string]any) (matings.MatingResponse, error) {
	var out matings.MatingResponse
	err := c.http.DoJSON(ctx, http.MethodPut, "/matings/"+strconv.FormatInt(id, 10), nil, fields, &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context) (dashboard.Dashboard, error) {
	var out dashboard.Dashboard
	err := c.http.DoJSON(ctx, http.MethodGet, "/dashboard-full", nil, nil, &out)
	return out, err
}
