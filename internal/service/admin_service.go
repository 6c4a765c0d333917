package service

import (
	"context"
	"net/http"

	"github.com/gxmovies/storefront-client/internal/domain"
)

const adminPath = "/admin"

// AdminService feeds the dashboard.
type AdminService struct {
	client *Client
}

func (s *AdminService) Summary(ctx context.Context) (*domain.Summary, error) {
	var summary domain.Summary
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: adminPath + "/summary"}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Chart returns the series for one chart type, as the backend shapes it.
func (s *AdminService) Chart(ctx context.Context, chartType string) (domain.ChartData, error) {
	var data domain.ChartData
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: adminPath + "/chart", Query: query("type", chartType)}, &data); err != nil {
		return nil, err
	}
	return data, nil
}
