package hydration

import (
	"fmt"

	"github.com/utafrali/catalogsearch/internal/domain"
	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
)

// SourceFetchError reports that the source of truth failed during a
// hydration. The index keeps serving its previous contents.
type SourceFetchError struct {
	Kind domain.Kind
	Err  error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch visible %ss: %v", e.Kind, e.Err)
}

// Unwrap exposes the cause and ErrServiceUnavail.
func (e *SourceFetchError) Unwrap() []error {
	return []error{e.Err, apperrors.ErrServiceUnavail}
}
