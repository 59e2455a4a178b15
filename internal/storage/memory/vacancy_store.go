// Package memory provides in-memory storage implementations for development and testing.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
)

type vacancyKey struct {
	id        string
	entryDate string
}

// VacancyStore keeps stamped listings in memory for development and dry runs.
type VacancyStore struct {
	mu        sync.RWMutex
	keys      map[vacancyKey]struct{}
	documents []crawler.Vacancy
}

// NewVacancyStore constructs an empty VacancyStore.
func NewVacancyStore() *VacancyStore {
	return &VacancyStore{keys: make(map[vacancyKey]struct{})}
}

// Exists reports whether a document with the id and entry date was inserted.
func (s *VacancyStore) Exists(_ context.Context, id, entryDate string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[vacancyKey{id: id, entryDate: entryDate}]
	return ok, nil
}

// Insert stores a copy of the document.
func (s *VacancyStore) Insert(_ context.Context, vacancy crawler.Vacancy) error {
	id, ok := vacancy.ID()
	if !ok {
		return errors.New("vacancy id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[vacancyKey{id: id, entryDate: vacancy.EntryDate()}] = struct{}{}
	s.documents = append(s.documents, maps.Clone(vacancy))
	return nil
}

// Documents returns the stored documents in insertion order.
func (s *VacancyStore) Documents() []crawler.Vacancy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.Vacancy, len(s.documents))
	copy(out, s.documents)
	return out
}

// Len returns the number of stored documents.
func (s *VacancyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
