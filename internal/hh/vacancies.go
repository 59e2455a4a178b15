package hh

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/metrics"
)

// GetVacancies fetches one page of vacancies for an area and professional role.
func (c *Client) GetVacancies(ctx context.Context, areaID, roleID crawler.ID, page int) (crawler.VacancyPage, error) {
	params := url.Values{}
	params.Set("area", areaID.String())
	params.Set("professional_role", roleID.String())
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.cfg.PerPage))

	body, err := c.get(ctx, routeVacancies, "/vacancies", params)
	if err != nil {
		return crawler.VacancyPage{}, err
	}
	var out crawler.VacancyPage
	if err := decode(body, &out); err != nil {
		return crawler.VacancyPage{}, err
	}
	metrics.ObservePage()
	return out, nil
}

// FetchAllVacancies walks result pages from 0 while the page index is below
// the page count reported by the latest response. A failed or item-less page
// ends the walk early and whatever was gathered so far is returned.
func (c *Client) FetchAllVacancies(ctx context.Context, areaID, roleID crawler.ID) []crawler.Vacancy {
	var vacancies []crawler.Vacancy
	for page, total := 0, 1; page < total; page++ {
		c.logger.Info("fetching vacancies page",
			zap.Int("page", page),
			zap.String("area_id", areaID.String()),
			zap.String("role_id", roleID.String()),
		)
		data, err := c.GetVacancies(ctx, areaID, roleID, page)
		if err != nil {
			c.logger.Warn("no vacancies found or invalid data", zap.Int("page", page), zap.Error(err))
			break
		}
		if data.Items == nil {
			c.logger.Warn("no vacancies found or invalid data", zap.Int("page", page))
			break
		}
		vacancies = append(vacancies, data.Items...)
		total = data.TotalPages()
	}
	return vacancies
}
