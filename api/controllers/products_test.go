package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	product "github.com/estoquelabs/estoque-backend/internal/products"
	pkgerrors "github.com/estoquelabs/estoque-backend/pkg/errors"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type stubProductService struct {
	created   *product.CreateProductInput
	deletedID uuid.UUID
	getErr    error
	dto       product.ProductDTO
}

func (s *stubProductService) CreateProduct(_ context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.created = &input
	return &s.dto, nil
}

func (s *stubProductService) UpdateProduct(context.Context, uuid.UUID, product.UpdateProductInput) (*product.ProductDTO, error) {
	return &s.dto, nil
}

func (s *stubProductService) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.deletedID = id
	return nil
}

func (s *stubProductService) GetProduct(context.Context, uuid.UUID) (*product.ProductDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &s.dto, nil
}

func (s *stubProductService) ListProducts(context.Context, product.ListProductsInput) ([]product.ProductDTO, error) {
	return []product.ProductDTO{s.dto}, nil
}

func (s *stubProductService) SetInventory(context.Context, uuid.UUID, product.SetInventoryInput) (*product.ProductDTO, error) {
	return &s.dto, nil
}

func controllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreateProductValidatesBody(t *testing.T) {
	stub := &stubProductService{}
	handler := CreateProduct(stub, controllerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Caneca"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing ml_item_id, got %d", rec.Code)
	}
	if stub.created != nil {
		t.Fatal("service must not be called on validation failure")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"ml_item_id":"MLB123456789","name":"Caneca"}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on success, got %d", rec.Code)
	}
	if stub.created == nil || stub.created.MLItemID != "MLB123456789" {
		t.Fatalf("unexpected input forwarded to service: %+v", stub.created)
	}
}

func TestGetProductMapsErrors(t *testing.T) {
	stub := &stubProductService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	handler := GetProduct(stub, controllerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withURLParam(req, "productID", "not-a-uuid"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}

	id := uuid.New()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id.String(), nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withURLParam(req, "productID", id.String()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}
}

func TestDeleteProductForwardsID(t *testing.T) {
	stub := &stubProductService{}
	handler := DeleteProduct(stub, controllerLogger())

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+id.String(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withURLParam(req, "productID", id.String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}
	if stub.deletedID != id {
		t.Fatalf("expected delete for %s, got %s", id, stub.deletedID)
	}
}

func TestSetProductInventoryRejectsNegativeQuantity(t *testing.T) {
	stub := &stubProductService{}
	handler := SetProductInventory(stub, controllerLogger())

	id := uuid.New()
	body := `{"warehouse_id":"` + uuid.NewString() + `","quantity":-2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+id.String()+"/inventory", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withURLParam(req, "productID", id.String()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative quantity, got %d", rec.Code)
	}
}
