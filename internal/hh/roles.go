package hh

import (
	"context"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
)

type professionalRolesResponse struct {
	Categories []crawler.RoleCategory `json:"categories"`
}

// FetchProfessionalRoles returns every role category with its roles.
func (c *Client) FetchProfessionalRoles(ctx context.Context) ([]crawler.RoleCategory, error) {
	body, err := c.get(ctx, routeRoles, "/professional_roles", nil)
	if err != nil {
		return nil, err
	}
	var resp professionalRolesResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}
