package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainChat "github.com/novareel/novareel/domains/chat"
	pkgError "github.com/novareel/novareel/pkg/error"
)

func ValidateReviewChat(ctx context.Context, request domainChat.ChatRequest) error {
	if request.UserID == "" {
		return pkgError.UnauthenticatedError("user identity is required")
	}

	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.MediaID, validation.Required, validation.Min(int64(1))),
		validation.Field(&request.MediaKind, validation.Required, validation.In("movie", "tv")),
		validation.Field(&request.Message, validation.Required, validation.Length(1, 2000)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
