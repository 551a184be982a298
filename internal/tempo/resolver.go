// Package tempo looks up the tempo of a song by title and optional artist.
package tempo

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// MinBPM and MaxBPM bound what a lookup may return
	MinBPM = 40.0
	MaxBPM = 300.0
)

// ErrNotFound is returned when no tempo is known for a song
var ErrNotFound = errors.New("tempo not found")

// Resolver looks a song's tempo up. It satisfies pattern.TempoResolver.
type Resolver interface {
	Resolve(ctx context.Context, title, artist string) (float64, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, title, artist string) (float64, error)

// Resolve implements Resolver
func (f ResolverFunc) Resolve(ctx context.Context, title, artist string) (float64, error) {
	return f(ctx, title, artist)
}

// Key normalises a song reference to "artist|title", lower-cased with runs of
// whitespace collapsed
func Key(title, artist string) string {
	return normalise(artist) + "|" + normalise(title)
}

func normalise(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// InRange reports whether bpm is a plausible song tempo
func InRange(bpm float64) bool {
	return bpm >= MinBPM && bpm <= MaxBPM
}

func notFound(title, artist string) error {
	if artist == "" {
		return fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return fmt.Errorf("%w: %q by %q", ErrNotFound, title, artist)
}

// ChainResolver asks each resolver in turn; the first success wins
type ChainResolver []Resolver

// Resolve implements Resolver. When every resolver fails the errors are joined.
func (c ChainResolver) Resolve(ctx context.Context, title, artist string) (float64, error) {
	if len(c) == 0 {
		return 0, notFound(title, artist)
	}
	var errs []error
	for _, r := range c {
		if r == nil {
			continue
		}
		bpm, err := r.Resolve(ctx, title, artist)
		if err == nil {
			return bpm, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return 0, notFound(title, artist)
	}
	return 0, errors.Join(errs...)
}
