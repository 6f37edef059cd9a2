package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainPrefs "github.com/novareel/novareel/domains/prefs"
	pkgError "github.com/novareel/novareel/pkg/error"
)

func ValidateAddItem(ctx context.Context, request domainPrefs.AddItemRequest) error {
	if request.UserID == "" {
		return pkgError.UnauthenticatedError("user identity is required")
	}

	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.CatalogID, validation.Required, validation.Min(int64(1))),
		validation.Field(&request.Title, validation.Required),
		validation.Field(&request.MediaKind, validation.Required, validation.In("movie", "tv")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
