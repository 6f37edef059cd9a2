package rest

import (
	"github.com/gofiber/fiber/v2"

	domainCatalog "github.com/novareel/novareel/domains/catalog"
	"github.com/novareel/novareel/pkg/utils"
)

type Catalog struct {
	Service domainCatalog.ICatalogUsecase
}

func InitRestCatalog(app fiber.Router, service domainCatalog.ICatalogUsecase) Catalog {
	rest := Catalog{Service: service}
	app.Get("/catalog", rest.Proxy)

	return rest
}

func (handler *Catalog) Proxy(c *fiber.Ctx) error {
	var request domainCatalog.ProxyRequest
	if err := c.QueryParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	raw, err := handler.Service.Proxy(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}
