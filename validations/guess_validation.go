package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	domainGuess "github.com/novareel/novareel/domains/guess"
	pkgError "github.com/novareel/novareel/pkg/error"
)

func ValidateGuess(ctx context.Context, request domainGuess.GuessRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ImageURL, validation.Required, is.URL),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
