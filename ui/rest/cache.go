package rest

import (
	"github.com/gofiber/fiber/v2"

	domainCache "github.com/novareel/novareel/domains/cache"
	"github.com/novareel/novareel/pkg/utils"
)

type Cache struct {
	Service domainCache.ICacheUsecase
}

func InitRestCache(app fiber.Router, service domainCache.ICacheUsecase) Cache {
	rest := Cache{Service: service}
	app.Get("/cache/stats", rest.GetStats)
	app.Post("/cache/invalidate", rest.Invalidate)
	app.Post("/cache/clear", rest.ClearAll)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.GetStats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (handler *Cache) Invalidate(c *fiber.Ctx) error {
	var request domainCache.InvalidateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	err := handler.Service.Invalidate(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache entries invalidated",
	})
}

func (handler *Cache) ClearAll(c *fiber.Ctx) error {
	err := handler.Service.ClearAll(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache cleared successfully",
	})
}
