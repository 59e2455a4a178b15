package hh

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
)

// FetchCountries returns the upstream country list.
func (c *Client) FetchCountries(ctx context.Context) ([]crawler.Country, error) {
	body, err := c.get(ctx, routeCountries, "/areas/countries", nil)
	if err != nil {
		return nil, err
	}
	var countries []crawler.Country
	if err := decode(body, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// FindCountryURL returns the area-tree URL of the country with exactly the
// given name. The boolean is false when no country matches or the list could
// not be fetched.
func (c *Client) FindCountryURL(ctx context.Context, name string) (string, bool) {
	countries, err := c.FetchCountries(ctx)
	if err != nil {
		return "", false
	}
	for _, country := range countries {
		if country.Name == name {
			return country.URL, true
		}
	}
	return "", false
}

// FetchAreas resolves the configured country's area tree and keeps the
// top-level areas whose name is in names, in upstream order.
func (c *Client) FetchAreas(ctx context.Context, names []string) ([]crawler.Area, error) {
	countryURL, ok := c.FindCountryURL(ctx, c.cfg.Country)
	if !ok {
		c.logger.Error("country not found", zap.String("country", c.cfg.Country))
		return nil, ErrCountryNotFound
	}

	body, err := c.get(ctx, routeCountry, countryURL, nil)
	if err != nil {
		return nil, err
	}
	var country crawler.Area
	if err := decode(body, &country); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	var areas []crawler.Area
	for _, area := range country.Areas {
		if _, ok := wanted[area.Name]; ok {
			areas = append(areas, area)
		}
	}
	return areas, nil
}
