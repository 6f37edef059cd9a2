package rest

import (
	"github.com/gofiber/fiber/v2"

	domainGuess "github.com/novareel/novareel/domains/guess"
	"github.com/novareel/novareel/pkg/utils"
)

type Guess struct {
	Service domainGuess.IGuessUsecase
}

func InitRestGuess(app fiber.Router, service domainGuess.IGuessUsecase) Guess {
	rest := Guess{Service: service}
	app.Post("/guess", rest.IdentifyFromImage)

	return rest
}

func (handler *Guess) IdentifyFromImage(c *fiber.Ctx) error {
	var request domainGuess.GuessRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	response, err := handler.Service.IdentifyFromImage(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Title identified",
		Results: response,
	})
}
