// Package gateway exposes Player and User persistence on top of the
// transactional executor. Every method runs in its own unit of work and
// reports failures as *model.ValidationError.
package gateway

import (
	"github.com/samber/oops"

	"github.com/mcoot/squadbook/internal/model"
)

// exactlyOne returns the single element of matches, or an error wrapping
// model.ErrNotFound or model.ErrAmbiguousMatch
func exactlyOne[T any](matches []T, code string, key string, value any) (T, error) {
	var zero T
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return zero, oops.Code(code).With(key, value).Wrap(model.ErrNotFound)
	default:
		return zero, oops.Code(code).With(key, value).With("matches", len(matches)).Wrap(model.ErrAmbiguousMatch)
	}
}
