package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"scripfolio/internal/config"
	"scripfolio/internal/services"
	"scripfolio/internal/staging"
	"scripfolio/internal/testutil"
)

const handlerTradebook = "trade_id,symbol,isin,trade_date,trade_type,quantity,price\n" +
	"T1,INFY,,2025-04-01,buy,10,100\n" +
	"T2,INFY,,2025-04-02,sell,4,150\n"

func newIngestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	svc := services.NewIngestionService(db,
		staging.NewStore(time.Minute),
		staging.NewProgressTracker(time.Minute),
		config.ChargePolicyGross)
	handler := NewIngestHandler(svc)

	router := gin.New()
	router.POST("/ingest/preview", handler.Preview)
	router.POST("/ingest/commit", handler.Commit)
	router.POST("/ingest/discard", handler.Discard)
	router.GET("/ingest/progress/:correlation_id", handler.Progress)
	return router
}

func multipartBody(t *testing.T, tradebook string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if tradebook != "" {
		part, err := writer.CreateFormFile("tradebook", "tradebook.csv")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte(tradebook)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func doRequest(router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIngestEndpoints(t *testing.T) {
	t.Run("preview then commit", func(t *testing.T) {
		router := newIngestRouter(t)

		body, contentType := multipartBody(t, handlerTradebook, map[string]string{"correlation_id": "corr-1"})
		w := doRequest(router, http.MethodPost, "/ingest/preview", body, contentType)
		if w.Code != http.StatusOK {
			t.Fatalf("preview returned %d: %s", w.Code, w.Body.String())
		}

		var preview services.PreviewResult
		if err := json.Unmarshal(w.Body.Bytes(), &preview); err != nil {
			t.Fatalf("could not decode preview: %v", err)
		}
		if preview.StagingID == "" || preview.Summary.TradeCount != 2 {
			t.Fatalf("unexpected preview: %+v", preview.Summary)
		}

		// progress was recorded under the correlation id
		w = doRequest(router, http.MethodGet, "/ingest/progress/corr-1", &bytes.Buffer{}, "")
		if w.Code != http.StatusOK {
			t.Errorf("progress returned %d", w.Code)
		}

		commitBody, _ := json.Marshal(gin.H{"staging_id": preview.StagingID})
		w = doRequest(router, http.MethodPost, "/ingest/commit", bytes.NewBuffer(commitBody), "application/json")
		if w.Code != http.StatusOK {
			t.Fatalf("commit returned %d: %s", w.Code, w.Body.String())
		}

		// second commit conflicts
		w = doRequest(router, http.MethodPost, "/ingest/commit", bytes.NewBuffer(commitBody), "application/json")
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409 on double commit, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("preview without tradebook is rejected", func(t *testing.T) {
		router := newIngestRouter(t)

		body, contentType := multipartBody(t, "", nil)
		w := doRequest(router, http.MethodPost, "/ingest/preview", body, contentType)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("commit without staging id is rejected", func(t *testing.T) {
		router := newIngestRouter(t)

		w := doRequest(router, http.MethodPost, "/ingest/commit", bytes.NewBufferString("{}"), "application/json")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("commit of unknown batch is not found", func(t *testing.T) {
		router := newIngestRouter(t)

		body, _ := json.Marshal(gin.H{"staging_id": "missing"})
		w := doRequest(router, http.MethodPost, "/ingest/commit", bytes.NewBuffer(body), "application/json")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("discard then commit conflicts", func(t *testing.T) {
		router := newIngestRouter(t)

		body, contentType := multipartBody(t, handlerTradebook, nil)
		w := doRequest(router, http.MethodPost, "/ingest/preview", body, contentType)
		if w.Code != http.StatusOK {
			t.Fatalf("preview returned %d", w.Code)
		}
		var preview services.PreviewResult
		if err := json.Unmarshal(w.Body.Bytes(), &preview); err != nil {
			t.Fatalf("could not decode preview: %v", err)
		}

		idBody, _ := json.Marshal(gin.H{"staging_id": preview.StagingID})
		w = doRequest(router, http.MethodPost, "/ingest/discard", bytes.NewBuffer(idBody), "application/json")
		if w.Code != http.StatusOK {
			t.Fatalf("discard returned %d", w.Code)
		}

		w = doRequest(router, http.MethodPost, "/ingest/commit", bytes.NewBuffer(idBody), "application/json")
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409 after discard, got %d", w.Code)
		}
	})

	t.Run("unknown correlation id returns not found", func(t *testing.T) {
		router := newIngestRouter(t)

		w := doRequest(router, http.MethodGet, "/ingest/progress/nope", &bytes.Buffer{}, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}
