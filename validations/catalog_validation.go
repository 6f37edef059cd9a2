package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainCatalog "github.com/novareel/novareel/domains/catalog"
	pkgError "github.com/novareel/novareel/pkg/error"
)

func ValidateCatalogProxy(ctx context.Context, request domainCatalog.ProxyRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Endpoint, validation.Required),
		validation.Field(&request.Page, validation.Min(0), validation.Max(1000)),
		validation.Field(&request.ID, validation.Min(int64(0))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
