// package services defines the [Catalog] interface for the catalog REST API and its HTTP implementation
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/shopx/internal/forms"
	"github.com/desertthunder/shopx/internal/models"
)

// Catalog defines the catalog API operations used by list views and commands.
type Catalog interface {
	// ListVideos retrieves one page of videos.
	ListVideos(ctx context.Context, page, limit int) (*models.Page[models.Video], error)

	// ListCategories retrieves every category.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// CreateVideo uploads a new video. The payload must carry the video and thumbnail files.
	CreateVideo(ctx context.Context, payload *forms.Payload) error

	// UpdateVideo sends the changed fields of video id.
	UpdateVideo(ctx context.Context, id int64, payload *forms.Payload) error

	// DeleteVideo removes video id.
	DeleteVideo(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, payload *forms.Payload) error
	UpdateCategory(ctx context.Context, id int64, payload *forms.Payload) error
	DeleteCategory(ctx context.Context, id int64) error
}

// CatalogService implements [Catalog] over an [APIService].
type CatalogService struct {
	api *APIService
}

// NewCatalogService creates a [CatalogService] for the given API wrapper.
func NewCatalogService(api *APIService) *CatalogService {
	return &CatalogService{api: api}
}

func (c *CatalogService) ListVideos(ctx context.Context, page, limit int) (*models.Page[models.Video], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out models.Page[models.Video]
	if err := c.api.Call(ctx, http.MethodGet, "/videos?"+q.Encode(), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.api.Call(ctx, http.MethodGet, "/categories", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogService) CreateVideo(ctx context.Context, payload *forms.Payload) error {
	return c.write(ctx, http.MethodPost, "/videos/upload", payload)
}

func (c *CatalogService) UpdateVideo(ctx context.Context, id int64, payload *forms.Payload) error {
	return c.write(ctx, http.MethodPut, fmt.Sprintf("/videos/%d", id), payload)
}

func (c *CatalogService) DeleteVideo(ctx context.Context, id int64) error {
	return c.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/videos/%d", id), nil, "", nil)
}

func (c *CatalogService) CreateCategory(ctx context.Context, payload *forms.Payload) error {
	return c.write(ctx, http.MethodPost, "/categories", payload)
}

func (c *CatalogService) UpdateCategory(ctx context.Context, id int64, payload *forms.Payload) error {
	return c.write(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), payload)
}

func (c *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return c.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, "", nil)
}

func (c *CatalogService) write(ctx context.Context, method, path string, payload *forms.Payload) error {
	body, contentType, err := payload.Encode()
	if err != nil {
		return err
	}
	return c.api.Call(ctx, method, path, body, contentType, nil)
}
