// Package crawler holds the domain model of the vacancy crawler: the upstream
// taxonomy (countries, areas, professional roles), the opaque vacancy payload
// and the collaborator interfaces the sweep is written against.
package crawler
