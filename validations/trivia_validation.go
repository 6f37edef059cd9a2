package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainTrivia "github.com/novareel/novareel/domains/trivia"
	pkgError "github.com/novareel/novareel/pkg/error"
)

func ValidateTriviaGenerate(ctx context.Context, request domainTrivia.GenerateRequest) error {
	if request.UserID == "" {
		return pkgError.UnauthenticatedError("user identity is required")
	}

	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.MediaKind, validation.Required, validation.In("movie", "tv")),
		validation.Field(&request.Difficulty, validation.In(
			domainTrivia.DifficultyEasy,
			domainTrivia.DifficultyMedium,
			domainTrivia.DifficultyHard,
			domainTrivia.DifficultyMixed,
		)),
		validation.Field(&request.QuestionCount, validation.Min(0), validation.Max(15)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	// Zero means "use the default"; explicit values start at 3.
	if request.QuestionCount != 0 && request.QuestionCount < 3 {
		return pkgError.ValidationError("question_count: must be no less than 3")
	}

	return nil
}
