package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
)

func TestVacancyStoreExistsAfterInsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewVacancyStore()
	day := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	v := crawler.Vacancy{"id": "42", "name": "Go developer"}
	v.Stamp(day, "Москва")

	found, err := store.Exists(ctx, "42", "05.03.2024")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Insert(ctx, v))

	found, err = store.Exists(ctx, "42", "05.03.2024")
	require.NoError(t, err)
	require.True(t, found)

	found, err = store.Exists(ctx, "42", "06.03.2024")
	require.NoError(t, err)
	require.False(t, found)
}

func TestVacancyStoreKeepsCopies(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	v := crawler.Vacancy{"id": "7"}
	v.Stamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Москва")
	require.NoError(t, store.Insert(context.Background(), v))

	v["name"] = "mutated after insert"

	docs := store.Documents()
	require.Len(t, docs, 1)
	require.NotContains(t, docs[0], "name")
	require.Equal(t, "Москва", docs[0].AreaName())
	require.Equal(t, 1, store.Len())
}

func TestVacancyStoreRejectsMissingID(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	require.Error(t, store.Insert(context.Background(), crawler.Vacancy{"name": "no id"}))
	require.Zero(t, store.Len())
}
