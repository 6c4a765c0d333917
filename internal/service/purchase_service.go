package service

import (
	"context"
	"io"
	"net/http"

	"github.com/gxmovies/storefront-client/internal/api/dto"
	"github.com/gxmovies/storefront-client/internal/domain"
)

const (
	purchasesPath       = "/purchases"
	purchaseDetailsPath = "/purchasedetails"
)

// PurchaseService covers checkout, order history and the library.
type PurchaseService struct {
	client *Client
}

func (s *PurchaseService) Create(ctx context.Context, req dto.PurchaseRequest) (*domain.Purchase, error) {
	var purchase domain.Purchase
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodPost, Path: purchasesPath, Body: req}, &purchase); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *PurchaseService) ListForUser(ctx context.Context, userID int) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: purchasesPath + "/users/" + id(userID)}, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// MoviesForUser returns the user's library.
func (s *PurchaseService) MoviesForUser(ctx context.Context, userID int) ([]domain.PurchasedMovie, error) {
	var movies []domain.PurchasedMovie
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: purchasesPath + "/users/movies/" + id(userID)}, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (s *PurchaseService) IsPurchased(ctx context.Context, userID, movieID int) (bool, error) {
	var bought bool
	err := s.client.handleRequest(ctx, Request{
		Method: http.MethodGet,
		Path:   purchasesPath + "/users/movies/check",
		Query:  query("userId", id(userID), "movieId", id(movieID)),
	}, &bought)
	return bought, err
}

// InvoiceFileName is the name the invoice of transactionID is saved under.
func InvoiceFileName(transactionID string) string {
	return "invoice_" + transactionID + ".pdf"
}

// DownloadInvoice streams the PDF invoice to w. The body is raw bytes, not an
// envelope, but the call still passes both gateways.
func (s *PurchaseService) DownloadInvoice(ctx context.Context, purchaseID int, transactionID string, w io.Writer) (int64, error) {
	return s.client.download(ctx, Request{
		Method: http.MethodGet,
		Path:   purchasesPath + "/invoice/" + id(purchaseID),
		Query:  query("transactionId", transactionID),
	}, w)
}

// PurchaseDetailService lists the lines of a purchase.
type PurchaseDetailService struct {
	client *Client
}

func (s *PurchaseDetailService) ForPurchase(ctx context.Context, purchaseID int) ([]domain.PurchaseDetail, error) {
	var details []domain.PurchaseDetail
	if err := s.client.handleRequest(ctx, Request{Method: http.MethodGet, Path: purchaseDetailsPath + "/purchase/" + id(purchaseID)}, &details); err != nil {
		return nil, err
	}
	return details, nil
}
