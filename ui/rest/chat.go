package rest

import (
	"github.com/gofiber/fiber/v2"

	domainChat "github.com/novareel/novareel/domains/chat"
	"github.com/novareel/novareel/pkg/utils"
	"github.com/novareel/novareel/ui/rest/middleware"
)

type Chat struct {
	Service domainChat.IChatUsecase
}

func InitRestChat(app fiber.Router, service domainChat.IChatUsecase) Chat {
	rest := Chat{Service: service}
	app.Post("/review-chat", rest.ReviewChat)

	return rest
}

func (handler *Chat) ReviewChat(c *fiber.Ctx) error {
	var request domainChat.ChatRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}
	request.UserID = middleware.UserID(c)

	response, err := handler.Service.ReviewChat(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Chat response generated",
		Results: response,
	})
}
