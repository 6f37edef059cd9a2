package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/novareel/novareel/core/config"
	"github.com/novareel/novareel/domains/catalog"
	pkgError "github.com/novareel/novareel/pkg/error"
)

// Client is the media catalog API client. It forwards logical requests
// with the server-held bearer token and relays the raw JSON payload.
type Client struct {
	rest     *resty.Client
	language string
}

func NewClient(cfg config.CatalogConfig) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.BearerToken).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{rest: rest, language: cfg.Language}
}

// Fetch builds the upstream URL from the logical request and returns
// the upstream body unmodified. Non-2xx responses surface as typed
// upstream errors carrying the upstream status and body.
func (c *Client) Fetch(ctx context.Context, request catalog.ProxyRequest) (json.RawMessage, error) {
	path := "/" + strings.Trim(request.Endpoint, "/")
	if request.List != "" {
		path += "/" + url.PathEscape(request.List)
	}
	if request.ID != 0 {
		path += fmt.Sprintf("/%d", request.ID)
	}

	req := c.rest.R().SetContext(ctx)
	if c.language != "" {
		req.SetQueryParam("language", c.language)
	}
	if request.Query != "" {
		req.SetQueryParam("query", request.Query)
	}
	if request.Page > 0 {
		req.SetQueryParam("page", fmt.Sprintf("%d", request.Page))
	}
	if request.ExtraParams != "" {
		extra, err := url.ParseQuery(request.ExtraParams)
		if err != nil {
			return nil, pkgError.ValidationError("invalid extra_params: " + err.Error())
		}
		for name, values := range extra {
			for _, value := range values {
				req.SetQueryParam(name, value)
			}
		}
	}

	resp, err := req.Get(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Error("[TMDB] request failed")
		return nil, pkgError.InternalError("catalog request failed: " + err.Error())
	}
	if resp.IsError() {
		logrus.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode(),
		}).Warn("[TMDB] upstream error")
		return nil, pkgError.UpstreamError{
			Service:        "TMDB",
			UpstreamStatus: resp.StatusCode(),
			UpstreamBody:   string(resp.Body()),
		}
	}
	return json.RawMessage(resp.Body()), nil
}

// SearchResult is one entry of a multi search, used to ground model
// output against real catalog data.
type SearchResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	MediaType    string  `json:"media_type"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
}

// DisplayTitle returns the movie title or the TV show name.
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Year returns the release year, empty when unknown.
func (r SearchResult) Year() string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

type searchEnvelope struct {
	Results []SearchResult `json:"results"`
}

// Review is one audience review of a title.
type Review struct {
	Author    string  `json:"author"`
	Content   string  `json:"content"`
	Rating    float64 `json:"rating,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

type reviewEnvelope struct {
	Results []struct {
		Author        string `json:"author"`
		Content       string `json:"content"`
		CreatedAt     string `json:"created_at"`
		AuthorDetails struct {
			Rating float64 `json:"rating"`
		} `json:"author_details"`
	} `json:"results"`
}

// Reviews fetches the first page of audience reviews for one title.
func (c *Client) Reviews(ctx context.Context, mediaKind string, id int64) ([]Review, error) {
	raw, err := c.Fetch(ctx, catalog.ProxyRequest{
		Endpoint: fmt.Sprintf("%s/%d/reviews", mediaKind, id),
		Page:     1,
	})
	if err != nil {
		return nil, err
	}
	var envelope reviewEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgError.InternalError("malformed catalog response: " + err.Error())
	}
	reviews := make([]Review, 0, len(envelope.Results))
	for _, r := range envelope.Results {
		reviews = append(reviews, Review{
			Author:    r.Author,
			Content:   r.Content,
			Rating:    r.AuthorDetails.Rating,
			CreatedAt: r.CreatedAt,
		})
	}
	return reviews, nil
}

// SearchMulti searches movies and TV shows in one call.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]SearchResult, error) {
	raw, err := c.Fetch(ctx, catalog.ProxyRequest{
		Endpoint: "search/multi",
		Query:    query,
		Page:     1,
	})
	if err != nil {
		return nil, err
	}
	var envelope searchEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgError.InternalError("malformed catalog response: " + err.Error())
	}
	results := envelope.Results[:0]
	for _, r := range envelope.Results {
		if r.MediaType == "movie" || r.MediaType == "tv" {
			results = append(results, r)
		}
	}
	return results, nil
}
