package client

import (
	"context"
	"net/http"
	"net/url"

	"cv-builder/internal/catalog"
)

// Catalog reads need no token.

func (c *Client) ColorSchemes(ctx context.Context) ([]catalog.ColorScheme, error) {
	var items []catalog.ColorScheme
	err := c.do(ctx, http.MethodGet, "/api/color-schemes", nil, &items, false)
	return items, err
}

func (c *Client) ColorSchemesByCategory(ctx context.Context, category string) ([]catalog.ColorScheme, error) {
	var items []catalog.ColorScheme
	err := c.do(ctx, http.MethodGet, "/api/color-schemes/category/"+url.PathEscape(category), nil, &items, false)
	return items, err
}

func (c *Client) Templates(ctx context.Context) ([]catalog.Template, error) {
	var items []catalog.Template
	err := c.do(ctx, http.MethodGet, "/api/templates", nil, &items, false)
	return items, err
}

func (c *Client) SkillCategories(ctx context.Context) ([]catalog.SkillCategory, error) {
	var items []catalog.SkillCategory
	err := c.do(ctx, http.MethodGet, "/api/skill-categories", nil, &items, false)
	return items, err
}
