package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	domainCatalog "github.com/novareel/novareel/domains/catalog"
	"github.com/novareel/novareel/integrations/tmdb"
	"github.com/novareel/novareel/mediacache"
	"github.com/novareel/novareel/validations"
)

type catalogService struct {
	client  *tmdb.Client
	lists   *mediacache.Store[json.RawMessage]
	search  *mediacache.Store[json.RawMessage]
	details *mediacache.Store[json.RawMessage]
}

// NewCatalogService wires the catalog gateway to its TMDB client and
// the list/search/details cache families.
func NewCatalogService(client *tmdb.Client, lists, search, details *mediacache.Store[json.RawMessage]) domainCatalog.ICatalogUsecase {
	return &catalogService{
		client:  client,
		lists:   lists,
		search:  search,
		details: details,
	}
}

func (service catalogService) Proxy(ctx context.Context, request domainCatalog.ProxyRequest) (json.RawMessage, error) {
	if err := validations.ValidateCatalogProxy(ctx, request); err != nil {
		return nil, err
	}

	page := request.Page
	if page < 1 {
		page = 1
	}
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		return service.client.Fetch(ctx, request)
	}

	switch {
	case request.Query != "":
		key := mediacache.SearchKey(request.Endpoint, request.Query, page)
		if request.ForceRefresh {
			return service.search.GetForce(ctx, key, fetch)
		}
		return service.search.Get(ctx, key, fetch)
	case request.List != "":
		key := mediacache.ListKey(fmt.Sprintf("%s_%s", request.Endpoint, request.List), page)
		if request.ForceRefresh {
			return service.lists.GetForce(ctx, key, fetch)
		}
		return service.lists.Get(ctx, key, fetch)
	case request.ID != 0:
		key := mediacache.DetailKey(request.Endpoint, request.ID)
		if request.ForceRefresh {
			return service.details.GetForce(ctx, key, fetch)
		}
		return service.details.Get(ctx, key, fetch)
	default:
		// Bare endpoint with no list, query or id; nothing stable to key on.
		return fetch(ctx)
	}
}
