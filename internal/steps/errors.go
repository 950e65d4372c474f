package steps

import "errors"

var (
	// ErrUnknownDinucleotide indicates a step class absent from the database.
	ErrUnknownDinucleotide = errors.New("steps: dinucleotide not found in database")

	// ErrEmptyDatabase indicates a database without usable step samples.
	ErrEmptyDatabase = errors.New("steps: database has no step samples")

	// ErrNotSequenceAware indicates sequence-indexed sampling on a pooled database.
	ErrNotSequenceAware = errors.New("steps: database is not sequence aware")

	// ErrDegenerate indicates a covariance that cannot be factorized.
	ErrDegenerate = errors.New("steps: covariance matrix is not positive definite")
)
