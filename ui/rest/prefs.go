package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	domainPrefs "github.com/novareel/novareel/domains/prefs"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/pkg/utils"
	"github.com/novareel/novareel/ui/rest/middleware"
)

type Prefs struct {
	Service domainPrefs.IPrefsUsecase
}

func InitRestPrefs(app fiber.Router, service domainPrefs.IPrefsUsecase) Prefs {
	rest := Prefs{Service: service}
	app.Get("/favorites", rest.ListFavorites)
	app.Post("/favorites", rest.AddFavorite)
	app.Get("/favorites/:catalog_id", rest.IsFavorite)
	app.Delete("/favorites/:catalog_id", rest.RemoveFavorite)

	app.Get("/watchlist", rest.ListWatchlist)
	app.Post("/watchlist", rest.AddToWatchlist)
	app.Get("/watchlist/:catalog_id", rest.IsInWatchlist)
	app.Delete("/watchlist/:catalog_id", rest.RemoveFromWatchlist)

	return rest
}

func catalogIDParam(c *fiber.Ctx) int64 {
	id, err := strconv.ParseInt(c.Params("catalog_id"), 10, 64)
	if err != nil {
		panic(pkgError.ValidationError("catalog_id: must be an integer."))
	}
	return id
}

func (handler *Prefs) AddFavorite(c *fiber.Ctx) error {
	var request domainPrefs.AddItemRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}
	request.UserID = middleware.UserID(c)

	item, err := handler.Service.AddFavorite(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Favorite added",
		Results: item,
	})
}

func (handler *Prefs) RemoveFavorite(c *fiber.Ctx) error {
	id := catalogIDParam(c)

	err := handler.Service.RemoveFavorite(c.UserContext(), middleware.UserID(c), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Favorite removed",
	})
}

func (handler *Prefs) ListFavorites(c *fiber.Ctx) error {
	items, err := handler.Service.ListFavorites(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Favorites fetched",
		Results: items,
	})
}

func (handler *Prefs) IsFavorite(c *fiber.Ctx) error {
	id := catalogIDParam(c)

	found, err := handler.Service.IsFavorite(c.UserContext(), middleware.UserID(c), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Favorite checked",
		Results: map[string]bool{"is_favorite": found},
	})
}

func (handler *Prefs) AddToWatchlist(c *fiber.Ctx) error {
	var request domainPrefs.AddItemRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}
	request.UserID = middleware.UserID(c)

	item, err := handler.Service.AddToWatchlist(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Watchlist item added",
		Results: item,
	})
}

func (handler *Prefs) RemoveFromWatchlist(c *fiber.Ctx) error {
	id := catalogIDParam(c)

	err := handler.Service.RemoveFromWatchlist(c.UserContext(), middleware.UserID(c), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Watchlist item removed",
	})
}

func (handler *Prefs) ListWatchlist(c *fiber.Ctx) error {
	items, err := handler.Service.ListWatchlist(c.UserContext(), middleware.UserID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Watchlist fetched",
		Results: items,
	})
}

func (handler *Prefs) IsInWatchlist(c *fiber.Ctx) error {
	id := catalogIDParam(c)

	found, err := handler.Service.IsInWatchlist(c.UserContext(), middleware.UserID(c), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Watchlist checked",
		Results: map[string]bool{"in_watchlist": found},
	})
}
