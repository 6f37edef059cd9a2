package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	domainRecommend "github.com/novareel/novareel/domains/recommend"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/ui/rest/middleware"
)

// fakeRecommendService implements IRecommendUsecase with canned replies
// and records the user ids it was called with.
type fakeRecommendService struct {
	gotUserID string
	gotQuery  string
}

func (f *fakeRecommendService) Recommend(ctx context.Context, request domainRecommend.RecommendRequest) (domainRecommend.RecommendResponse, error) {
	f.gotUserID = request.UserID
	f.gotQuery = request.NaturalLanguageQuery
	if request.UserID == "" {
		return domainRecommend.RecommendResponse{}, pkgError.UnauthenticatedError("a user identity is required")
	}
	return domainRecommend.RecommendResponse{
		Recommendations: []domainRecommend.Recommendation{
			{Title: "Heat", MediaKind: domainRecommend.KindMovie, CatalogID: 949},
		},
		Reasoning: "classic heist picks",
		Source:    "fresh",
	}, nil
}

func (f *fakeRecommendService) ForYou(ctx context.Context, userID string) (domainRecommend.RecommendResponse, error) {
	f.gotUserID = userID
	return domainRecommend.RecommendResponse{Source: "cached", PendingCount: 2}, nil
}

func (f *fakeRecommendService) RefreshForYou(ctx context.Context, userID string) (domainRecommend.RecommendResponse, error) {
	f.gotUserID = userID
	return domainRecommend.RecommendResponse{Source: "fresh"}, nil
}

func (f *fakeRecommendService) ApplyPending(ctx context.Context, userID string, current []domainRecommend.Recommendation) (domainRecommend.ApplyResponse, error) {
	f.gotUserID = userID
	return domainRecommend.ApplyResponse{Recommendations: current, Applied: false}, nil
}

func (f *fakeRecommendService) ListHistory(ctx context.Context, userID string) ([]domainRecommend.HistoryEntry, error) {
	f.gotUserID = userID
	return nil, nil
}

func (f *fakeRecommendService) RemoveHistoryEntry(ctx context.Context, userID string, entryID string) error {
	f.gotUserID = userID
	if entryID == "missing" {
		return pkgError.NotFoundError("history entry not found: " + entryID)
	}
	return nil
}

func (f *fakeRecommendService) ClearHistory(ctx context.Context, userID string) error {
	f.gotUserID = userID
	return nil
}

func newRecommendApp(service domainRecommend.IRecommendUsecase) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())
	app.Use(middleware.Identity())
	InitRestRecommend(app, service)
	return app
}

func TestRecommendPropagatesIdentityAndQuery(t *testing.T) {
	service := &fakeRecommendService{}
	app := newRecommendApp(service)

	body := []byte(`{"query":"funny heist movies","count":3}`)
	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if service.gotUserID != "user-42" {
		t.Errorf("expected user id from header, got %q", service.gotUserID)
	}
	if service.gotQuery != "funny heist movies" {
		t.Errorf("expected query from body, got %q", service.gotQuery)
	}

	var envelope struct {
		Code    string                            `json:"code"`
		Results domainRecommend.RecommendResponse `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if envelope.Code != "SUCCESS" {
		t.Fatalf("unexpected envelope code %q", envelope.Code)
	}
	if len(envelope.Results.Recommendations) != 1 || envelope.Results.Recommendations[0].Title != "Heat" {
		t.Fatalf("unexpected results: %+v", envelope.Results)
	}
}

func TestRecommendWithoutIdentityReturns401(t *testing.T) {
	app := newRecommendApp(&fakeRecommendService{})

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader([]byte(`{"query":"anything"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var envelope struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if envelope.Code != "UNAUTHENTICATED" {
		t.Fatalf("unexpected code %q", envelope.Code)
	}
}

func TestRecommendMalformedBodyReturns400(t *testing.T) {
	app := newRecommendApp(&fakeRecommendService{})

	req := httptest.NewRequest(http.MethodPost, "/recommendations", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRemoveHistoryEntryNotFound(t *testing.T) {
	app := newRecommendApp(&fakeRecommendService{})

	req := httptest.NewRequest(http.MethodDelete, "/history/missing", nil)
	req.Header.Set("X-User-ID", "user-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestApplyPendingParsesCurrentList(t *testing.T) {
	service := &fakeRecommendService{}
	app := newRecommendApp(service)

	body := []byte(`{"current":[{"title":"Heat","media_kind":"movie","catalog_id":949}]}`)
	req := httptest.NewRequest(http.MethodPost, "/recommendations/apply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Results domainRecommend.ApplyResponse `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if len(envelope.Results.Recommendations) != 1 || envelope.Results.Recommendations[0].CatalogID != 949 {
		t.Fatalf("current list not round-tripped: %+v", envelope.Results)
	}
}
