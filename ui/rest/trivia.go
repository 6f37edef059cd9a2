package rest

import (
	"github.com/gofiber/fiber/v2"

	domainTrivia "github.com/novareel/novareel/domains/trivia"
	"github.com/novareel/novareel/pkg/utils"
	"github.com/novareel/novareel/ui/rest/middleware"
)

type Trivia struct {
	Service domainTrivia.ITriviaUsecase
}

func InitRestTrivia(app fiber.Router, service domainTrivia.ITriviaUsecase) Trivia {
	rest := Trivia{Service: service}
	app.Post("/trivia", rest.Generate)
	app.Get("/trivia/sessions", rest.ListSessions)
	app.Get("/trivia/sessions/:id", rest.GetSession)
	app.Post("/trivia/sessions/:id/start", rest.StartSession)
	app.Post("/trivia/sessions/:id/answer", rest.AnswerQuestion)
	app.Post("/trivia/sessions/:id/complete", rest.CompleteSession)
	app.Post("/trivia/sessions/:id/abandon", rest.AbandonSession)
	app.Get("/trivia/stats", rest.GetStats)

	return rest
}

func (handler *Trivia) Generate(c *fiber.Ctx) error {
	var request domainTrivia.GenerateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}
	request.UserID = middleware.UserID(c)

	response, err := handler.Service.Generate(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Trivia generated",
		Results: response,
	})
}

func (handler *Trivia) ListSessions(c *fiber.Ctx) error {
	sessions, err := handler.Service.ListSessions(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Sessions fetched",
		Results: sessions,
	})
}

func (handler *Trivia) GetSession(c *fiber.Ctx) error {
	session, err := handler.Service.GetSession(c.UserContext(), middleware.UserID(c), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session fetched",
		Results: session,
	})
}

func (handler *Trivia) StartSession(c *fiber.Ctx) error {
	session, err := handler.Service.StartSession(c.UserContext(), middleware.UserID(c), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session started",
		Results: session,
	})
}

func (handler *Trivia) AnswerQuestion(c *fiber.Ctx) error {
	var answer domainTrivia.Answer
	if err := c.BodyParser(&answer); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	session, err := handler.Service.AnswerQuestion(c.UserContext(), middleware.UserID(c), c.Params("id"), answer)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Answer recorded",
		Results: session,
	})
}

func (handler *Trivia) CompleteSession(c *fiber.Ctx) error {
	session, err := handler.Service.CompleteSession(c.UserContext(), middleware.UserID(c), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session completed",
		Results: session,
	})
}

func (handler *Trivia) AbandonSession(c *fiber.Ctx) error {
	err := handler.Service.AbandonSession(c.UserContext(), middleware.UserID(c), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Session abandoned",
	})
}

func (handler *Trivia) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.GetStats(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Stats fetched",
		Results: stats,
	})
}
