package chi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/theduckylittle/registry/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := JSONRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"error":{"msg":"internal error"}}` {
		t.Errorf("body = %s", got)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic not logged")
	}
}

func TestJSONRecoverer_RepanicsAbort(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rvr := recover(); rvr != http.ErrAbortHandler { //nolint:errorlint,err113 // identity check
			t.Errorf("recovered %v, want ErrAbortHandler", rvr)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(zap.New(core)))
	r.Get("/catalog/{catalog}/api", func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/catalog/hypermap/api?q_text=parks", http.NoBody))

	reqID := rr.Header().Get("X-Request-ID")
	if reqID == "" {
		t.Fatal("missing X-Request-ID")
	}

	inside := logs.FilterMessage("inside").All()
	if len(inside) != 1 || inside[0].ContextMap()["request_id"] != reqID {
		t.Errorf("handler logger lacks request_id: %+v", inside)
	}

	lines := logs.FilterMessage("http_request").All()
	if len(lines) != 1 {
		t.Fatalf("http_request lines = %d", len(lines))
	}
	fields := lines[0].ContextMap()
	if fields["catalog"] != "hypermap" {
		t.Errorf("catalog = %v", fields["catalog"])
	}
	if fields["query"] != "q_text=parks" {
		t.Errorf("query = %v", fields["query"])
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status = %v (%T)", fields["status"], fields["status"])
	}
}
