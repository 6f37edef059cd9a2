package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainRecommend "github.com/novareel/novareel/domains/recommend"
	pkgError "github.com/novareel/novareel/pkg/error"
)

func ValidateRecommend(ctx context.Context, request domainRecommend.RecommendRequest) error {
	if request.UserID == "" {
		return pkgError.UnauthenticatedError("user identity is required")
	}

	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Count, validation.Min(0), validation.Max(10)),
		validation.Field(&request.NaturalLanguageQuery, validation.Length(0, 500)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
