package domain

import "errors"

var (
	// ErrTrackNotFound is returned when a catalog search yields no results
	ErrTrackNotFound = errors.New("track not found in catalog")

	// ErrRateLimited is returned when the upstream keeps answering 429 after all retries
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRequestFailed is returned when an upstream request fails with a non-success status or transport error
	ErrRequestFailed = errors.New("upstream request failed")

	// ErrMalformedResponse is returned when a success response cannot be parsed
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrAuthFailed is returned when the client-credentials exchange is rejected
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInputDirMissing is returned when the audio folder does not exist
	ErrInputDirMissing = errors.New("input directory missing")

	// ErrDatasetEmpty is returned when the feature dataset has no usable rows
	ErrDatasetEmpty = errors.New("feature dataset has no usable rows")

	// ErrInvalidRequest is returned when a lookup is attempted with an empty title
	ErrInvalidRequest = errors.New("invalid lookup parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
