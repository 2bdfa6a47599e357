// Package bookhaven provides a small bookstore front end built on scraped data.
// It scrapes a demo bookstore catalog, recommends similar titles using TF-IDF
// similarity, summarizes ratings, and takes orders priced from the catalog.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package bookhaven
