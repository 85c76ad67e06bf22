package storefront

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var resp envelope[[]Product]
	req := request{operation: "list_products", method: http.MethodGet, path: "products"}
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []Product{}, nil
	}
	return resp.Data, nil
}

// GetProduct returns one product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var resp envelope[*Product]
	req := request{operation: "get_product", method: http.MethodGet, path: "products/" + url.PathEscape(id)}
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return resp.Data, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (*Product, error) {
	req, err := jsonRequest("create_product", http.MethodPost, "products", token, input)
	if err != nil {
		return nil, err
	}
	var resp envelope[*Product]
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, input ProductInput) (*Product, error) {
	req, err := jsonRequest("update_product", http.MethodPut, "products/"+url.PathEscape(id), token, input)
	if err != nil {
		return nil, err
	}
	var resp envelope[*Product]
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	req := request{operation: "delete_product", method: http.MethodDelete, path: "products/" + url.PathEscape(id), token: token}
	return c.do(ctx, req, nil)
}

// UploadImage posts a product image as multipart form field "image" and returns the stored path.
func (c *Client) UploadImage(ctx context.Context, token, filename string, content io.Reader) (string, error) {
	if content == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image content is required")
	}
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload form")
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy upload content")
	}
	if err := writer.Close(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close upload form")
	}

	var resp struct {
		Success bool   `json:"success"`
		Image   string `json:"image"`
	}
	req := request{
		operation:   "upload_image",
		method:      http.MethodPost,
		path:        "upload",
		token:       token,
		body:        buf,
		contentType: writer.FormDataContentType(),
	}
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.Image == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "upload response missing image path")
	}
	return resp.Image, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var resp envelope[[]Category]
	req := request{operation: "list_categories", method: http.MethodGet, path: "categories"}
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []Category{}, nil
	}
	return resp.Data, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, input CategoryInput) (*Category, error) {
	req, err := jsonRequest("create_category", http.MethodPost, "categories", token, input)
	if err != nil {
		return nil, err
	}
	var resp envelope[*Category]
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) UpdateCategory(ctx context.Context, token, id string, input CategoryInput) (*Category, error) {
	req, err := jsonRequest("update_category", http.MethodPut, fmt.Sprintf("categories/%s", url.PathEscape(id)), token, input)
	if err != nil {
		return nil, err
	}
	var resp envelope[*Category]
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	req := request{operation: "delete_category", method: http.MethodDelete, path: "categories/" + url.PathEscape(id), token: token}
	return c.do(ctx, req, nil)
}
