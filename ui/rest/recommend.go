package rest

import (
	"github.com/gofiber/fiber/v2"

	domainRecommend "github.com/novareel/novareel/domains/recommend"
	"github.com/novareel/novareel/pkg/utils"
	"github.com/novareel/novareel/ui/rest/middleware"
)

type Recommend struct {
	Service domainRecommend.IRecommendUsecase
}

func InitRestRecommend(app fiber.Router, service domainRecommend.IRecommendUsecase) Recommend {
	rest := Recommend{Service: service}
	app.Post("/recommendations", rest.Recommend)
	app.Get("/recommendations/foryou", rest.ForYou)
	app.Post("/recommendations/refresh", rest.Refresh)
	app.Post("/recommendations/apply", rest.ApplyPending)

	app.Get("/history", rest.ListHistory)
	app.Delete("/history/:id", rest.RemoveHistoryEntry)
	app.Delete("/history", rest.ClearHistory)

	return rest
}

func (handler *Recommend) Recommend(c *fiber.Ctx) error {
	var request domainRecommend.RecommendRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}
	request.UserID = middleware.UserID(c)

	response, err := handler.Service.Recommend(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recommendations generated",
		Results: response,
	})
}

func (handler *Recommend) ForYou(c *fiber.Ctx) error {
	response, err := handler.Service.ForYou(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recommendations fetched",
		Results: response,
	})
}

func (handler *Recommend) Refresh(c *fiber.Ctx) error {
	response, err := handler.Service.RefreshForYou(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recommendations refreshed",
		Results: response,
	})
}

func (handler *Recommend) ApplyPending(c *fiber.Ctx) error {
	var request struct {
		Current []domainRecommend.Recommendation `json:"current"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	response, err := handler.Service.ApplyPending(c.UserContext(), middleware.UserID(c), request.Current)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Pending recommendations applied",
		Results: response,
	})
}

func (handler *Recommend) ListHistory(c *fiber.Ctx) error {
	entries, err := handler.Service.ListHistory(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "History fetched",
		Results: entries,
	})
}

func (handler *Recommend) RemoveHistoryEntry(c *fiber.Ctx) error {
	err := handler.Service.RemoveHistoryEntry(c.UserContext(), middleware.UserID(c), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "History entry removed",
	})
}

func (handler *Recommend) ClearHistory(c *fiber.Ctx) error {
	err := handler.Service.ClearHistory(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "History cleared",
	})
}
