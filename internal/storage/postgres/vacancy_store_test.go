package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
)

func TestNewVacancyStoreWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewVacancyStoreWithPool(nil, "")
	require.Error(t, err)

	_, err = NewVacancyStoreWithPool(mock, "vacancies; DROP TABLE users")
	require.Error(t, err)

	store, err := NewVacancyStoreWithPool(mock, "")
	require.NoError(t, err)
	require.Equal(t, DefaultTable, store.table)
}

func TestNewVacancyStoreRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := NewVacancyStore(context.Background(), Config{})
	require.Error(t, err)

	_, err = NewVacancyStore(context.Background(), Config{DSN: "postgres://localhost/hh", Table: "bad-name"})
	require.Error(t, err)
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewVacancyStoreWithPool(mock, "hh_vacancies")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS hh_vacancies").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS hh_vacancies_vacancy_id_entry_date_idx ON hh_vacancies \(vacancy_id, entry_date\)`).
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaPropagatesError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewVacancyStoreWithPool(mock, "")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS vacancies").
		WillReturnError(errors.New("permission denied"))

	err = store.EnsureSchema(context.Background())
	require.ErrorContains(t, err, "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewVacancyStoreWithPool(mock, "vacancies")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM vacancies WHERE vacancy_id = \$1 AND entry_date = \$2\)`).
		WithArgs("93353083", "05.03.2024").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := store.Exists(context.Background(), "93353083", "05.03.2024")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewVacancyStoreWithPool(mock, "vacancies")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("1", "05.03.2024").
		WillReturnError(errors.New("connection reset"))

	found, err := store.Exists(context.Background(), "1", "05.03.2024")
	require.Error(t, err)
	require.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertWritesDocument(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewVacancyStoreWithPool(mock, "vacancies")
	require.NoError(t, err)

	v := crawler.Vacancy{
		"id":         json.Number("93353083"),
		"name":       "Go developer",
		"entry_date": "05.03.2024",
		"area_name":  "Москва",
	}
	document, err := json.Marshal(v)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO vacancies").
		WithArgs("93353083", "05.03.2024", "Москва", document).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Insert(context.Background(), v))
	require.NoError(t, mock.ExpectationsWereMet())
	require.Contains(t, string(document), `"id":93353083`)
}

func TestInsertRequiresID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewVacancyStoreWithPool(mock, "vacancies")
	require.NoError(t, err)

	require.Error(t, store.Insert(context.Background(), crawler.Vacancy{"name": "anonymous"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPropagatesError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewVacancyStoreWithPool(mock, "vacancies")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO vacancies").
		WithArgs("1", "", "", pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	err = store.Insert(context.Background(), crawler.Vacancy{"id": "1"})
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}
