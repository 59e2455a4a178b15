// Package worker implements the sweep: areas x professional roles, each
// pair's listings fetched page by page and stored once per day.
package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/clock/system"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
	"github.com/JakeFAU/hh-vacancy-crawler/internal/metrics"
)

var (
	// ErrNoAreas aborts a sweep when none of the requested areas resolved.
	ErrNoAreas = errors.New("no areas found")
	// ErrNoRoles aborts a sweep when the role taxonomy came back empty.
	ErrNoRoles = errors.New("no professional roles found")
)

// Worker drives one sweep over the upstream listings.
type Worker struct {
	source   crawler.VacancySource
	store    crawler.VacancyStore
	notifier crawler.Notifier
	clock    crawler.Clock
	ids      crawler.IDGenerator
	logger   *zap.Logger
}

// New constructs a Worker. A nil clock falls back to the UTC wall clock and
// a nil id generator leaves the run id empty.
func New(
	source crawler.VacancySource,
	store crawler.VacancyStore,
	notifier crawler.Notifier,
	clock crawler.Clock,
	ids crawler.IDGenerator,
	logger *zap.Logger,
) *Worker {
	if clock == nil {
		clock = system.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		source:   source,
		store:    store,
		notifier: notifier,
		clock:    clock,
		ids:      ids,
		logger:   logger,
	}
}

// Run performs one full sweep over areaNames. Individual pair, page and
// listing failures are logged and skipped; only an empty area list or an
// empty role taxonomy abort the sweep, as does context cancellation.
func (w *Worker) Run(ctx context.Context, areaNames []string) (crawler.Summary, error) {
	start := w.clock.Now()
	summary := crawler.Summary{RunID: w.newRunID()}
	logger := w.logger.With(zap.String("run_id", summary.RunID))

	finish := func(err error) (crawler.Summary, error) {
		summary.Duration = w.clock.Now().Sub(start)
		metrics.ObserveRun(summary.Duration, err == nil, w.clock.Now())
		return summary, err
	}

	areas, err := w.source.FetchAreas(ctx, areaNames)
	if err != nil {
		logger.Error("fetch areas failed", zap.Error(err))
	}
	if len(areas) == 0 {
		logger.Error("no areas found", zap.Strings("requested", areaNames))
		return finish(errors.Join(ErrNoAreas, err))
	}

	categories, err := w.source.FetchProfessionalRoles(ctx)
	if err != nil {
		logger.Error("fetch professional roles failed", zap.Error(err))
	}
	if len(categories) == 0 {
		logger.Error("no professional roles found")
		return finish(errors.Join(ErrNoRoles, err))
	}
	categories = DedupeRoles(categories)

	summary.Areas = len(areas)
	for _, category := range categories {
		summary.Roles += len(category.Roles)
	}
	logger.Info("sweep started", zap.Int("areas", summary.Areas), zap.Int("roles", summary.Roles))

	for _, area := range areas {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		areaLogger := logger.With(zap.String("area", area.Name), zap.String("area_id", area.ID.String()))
		w.notify(ctx, areaLogger, fmt.Sprintf("Processing area %s (ID: %s)", area.Name, area.ID))

		for _, category := range categories {
			for _, role := range category.Roles {
				if err := ctx.Err(); err != nil {
					return finish(err)
				}
				roleLogger := areaLogger.With(zap.String("role", role.Name), zap.String("role_id", role.ID.String()))
				w.notify(ctx, roleLogger, fmt.Sprintf("Fetching vacancies for role %s (ID: %s)", role.Name, role.ID))

				vacancies := w.source.FetchAllVacancies(ctx, area.ID, role.ID)
				result := w.saveVacancies(ctx, roleLogger, vacancies, area.Name)
				summary.Add(len(vacancies), result)
			}
		}
	}

	summary, err = finish(nil)
	logger.Info("sweep finished",
		zap.Int("pairs", summary.Pairs),
		zap.Int("fetched", summary.Fetched),
		zap.Int("inserted", summary.Inserted),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)
	return summary, err
}

// SaveVacancies stamps each listing with today's entry date and areaName,
// then inserts the ones not yet stored for that day.
func (w *Worker) SaveVacancies(ctx context.Context, vacancies []crawler.Vacancy, areaName string) crawler.BatchResult {
	return w.saveVacancies(ctx, w.logger, vacancies, areaName)
}

func (w *Worker) saveVacancies(
	ctx context.Context,
	logger *zap.Logger,
	vacancies []crawler.Vacancy,
	areaName string,
) crawler.BatchResult {
	var result crawler.BatchResult
	for _, vacancy := range vacancies {
		vacancy.Stamp(w.clock.Now(), areaName)

		id, ok := vacancy.ID()
		if !ok {
			logger.Error("vacancy without id", zap.String("url", vacancy.URL()))
			result.Failed++
			continue
		}

		exists, err := w.store.Exists(ctx, id, vacancy.EntryDate())
		if err != nil {
			logger.Error("error checking vacancy", zap.String("url", vacancy.URL()), zap.Error(err))
			result.Failed++
			continue
		}
		if exists {
			result.Duplicates++
			continue
		}

		if err := w.store.Insert(ctx, vacancy); err != nil {
			logger.Error("error inserting vacancy", zap.String("url", vacancy.URL()), zap.Error(err))
			result.Failed++
			continue
		}
		result.Inserted++
	}

	metrics.ObserveVacancies(areaName, metrics.OutcomeInserted, result.Inserted)
	metrics.ObserveVacancies(areaName, metrics.OutcomeDuplicate, result.Duplicates)
	metrics.ObserveVacancies(areaName, metrics.OutcomeFailed, result.Failed)

	w.notify(ctx, logger, fmt.Sprintf("Inserted: %d, Duplicates: %d", result.Inserted, result.Duplicates))
	logger.Info("vacancies saved",
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("failed", result.Failed),
	)
	return result
}

// DedupeRoles keeps the first occurrence of every role id across categories.
// Categories left without roles are dropped; order is preserved. The input
// is not modified.
func DedupeRoles(categories []crawler.RoleCategory) []crawler.RoleCategory {
	seen := make(map[crawler.ID]struct{})
	out := make([]crawler.RoleCategory, 0, len(categories))
	for _, category := range categories {
		roles := make([]crawler.ProfessionalRole, 0, len(category.Roles))
		for _, role := range category.Roles {
			if _, dup := seen[role.ID]; dup {
				continue
			}
			seen[role.ID] = struct{}{}
			roles = append(roles, role)
		}
		if len(roles) == 0 {
			continue
		}
		category.Roles = roles
		out = append(out, category)
	}
	return out
}

func (w *Worker) notify(ctx context.Context, logger *zap.Logger, text string) {
	if w.notifier == nil {
		return
	}
	err := w.notifier.Notify(ctx, text)
	metrics.ObserveNotification(err)
	if err != nil {
		logger.Warn("notification failed", zap.String("message", text), zap.Error(err))
	}
}

func (w *Worker) newRunID() string {
	if w.ids == nil {
		return ""
	}
	id, err := w.ids.NewID()
	if err != nil {
		w.logger.Warn("run id generation failed", zap.Error(err))
		return ""
	}
	return id
}
