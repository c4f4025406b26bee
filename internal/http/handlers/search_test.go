package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/platewatch/platewatch-backend/internal/pkg/errors"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/search"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeSearchService struct {
	lastTerm string
	results  []search.EstablishmentResult
	err      error
}

func (f *fakeSearchService) Search(ctx context.Context, term string) ([]search.EstablishmentResult, error) {
	f.lastTerm = term
	return f.results, f.err
}

func searchRouter(t *testing.T, svc *fakeSearchService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/search", NewSearchHandler(testLogger(t), svc).Search)
	return r
}

func TestSearchHandlerReturnsResults(t *testing.T) {
	svc := &fakeSearchService{
		results: []search.EstablishmentResult{{EntityID: "100", Name: "Joe's Pizza"}},
	}
	r := searchRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?name=joes", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.lastTerm != "joes" {
		t.Fatalf("term not forwarded: %q", svc.lastTerm)
	}

	var body []search.EstablishmentResult
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 1 || body[0].EntityID != "100" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSearchHandlerRejectsMissingName(t *testing.T) {
	svc := &fakeSearchService{err: apperrors.ErrInvalidArgument}
	r := searchRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSearchHandlerHidesInternalFailureDetail(t *testing.T) {
	svc := &fakeSearchService{err: errors.New("pq: relation establishments does not exist")}
	r := searchRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?name=joes", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := w.Body.String(); body == "" || strings.Contains(body, "relation") {
		t.Fatalf("internal detail must not leak: %s", body)
	}
}
