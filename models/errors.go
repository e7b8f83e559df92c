package models

import "errors"

// Request-fatal errors. Anything else a component can absorb is reported as a
// Placeholder value instead of an error.
var (
	ErrSourceNotFound    = errors.New("wikipedia page not found")
	ErrSourceUnavailable = errors.New("source page could not be fetched")
	ErrEmptyContent      = errors.New("no usable content on source page")
	ErrExtractionParse   = errors.New("unable to parse company data")
	ErrExtractionFailed  = errors.New("company data extraction failed")
	ErrSentimentAuth     = errors.New("error authenticating with twitter api")
	ErrSentimentProvider = errors.New("error fetching tweets")
)
