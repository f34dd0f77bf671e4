package domain

import "errors"

var (
	// ErrEmptyInput is returned when neither a URL nor text was provided.
	ErrEmptyInput = errors.New("empty input: provide a URL or some text")

	// ErrSourceUnavailable is returned when the text source cannot be fetched.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrBackend is returned when the generative service fails.
	ErrBackend = errors.New("generative backend error")

	// ErrMalformedOutput marks a generated result that does not decode to its expected shape.
	ErrMalformedOutput = errors.New("malformed generation output")
)
