package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/scrapedesk/cache"
	"github.com/use-agent/scrapedesk/client"
	"github.com/use-agent/scrapedesk/config"
	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/models"
)

// harness is a router wired to a fake scraping service.
type harness struct {
	t        *testing.T
	router   http.Handler
	sessions *cache.Cache
	service  *httptest.Server
	calls    atomic.Int32
	cookie   *http.Cookie
}

func newHarness(t *testing.T, reply string, tweak ...func(*config.Config)) *harness {
	t.Helper()
	return buildHarness(t, reply, nil, tweak...)
}

// newGatedHarness is newHarness with a service that holds every reply until
// release is called. Replies are released on cleanup at the latest.
func newGatedHarness(t *testing.T, reply string) (h *harness, release func()) {
	t.Helper()
	gate := make(chan struct{})
	h = buildHarness(t, reply, gate)

	var once sync.Once
	release = func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)
	return h, release
}

func buildHarness(t *testing.T, reply string, gate chan struct{}, tweak ...func(*config.Config)) *harness {
	t.Helper()
	h := &harness{t: t}

	h.service = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls.Add(1)
		if gate != nil {
			<-gate
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	}))
	t.Cleanup(h.service.Close)

	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Service.Endpoint = h.service.URL
	for _, fn := range tweak {
		fn(cfg)
	}

	sessions := cache.New(cfg.Session.MaxEntries, cfg.Session.TTL)
	t.Cleanup(sessions.Close)
	h.sessions = sessions

	ctrl := controller.New(client.New(cfg.Service.Endpoint, cfg.Service.Timeout))
	h.router = NewRouter(t.Context(), ctrl, sessions, cfg, time.Now())
	return h
}

func (h *harness) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == "scrapedesk_session" {
			h.cookie = ck
		}
	}
	return w
}

func (h *harness) postJSON(path, body string) models.ViewResponse {
	h.t.Helper()
	w := h.do(http.MethodPost, path, "application/json", body)
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ViewResponse
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(h.t, resp.View)
	return resp
}

func (h *harness) postForm(path string, form url.Values) {
	h.t.Helper()
	w := h.do(http.MethodPost, path, "application/x-www-form-urlencoded", form.Encode())
	require.Equal(h.t, http.StatusSeeOther, w.Code)
	assert.Equal(h.t, "/", w.Header().Get("Location"))
}

// waitIdle blocks until the caller's session has no submission running.
func (h *harness) waitIdle() {
	h.t.Helper()
	require.NotNil(h.t, h.cookie)
	require.Eventually(h.t, func() bool {
		s, ok := h.sessions.Get(h.cookie.Value)
		return ok && !s.Pending()
	}, 2*time.Second, 5*time.Millisecond)
}

func (h *harness) page() *goquery.Document {
	h.t.Helper()
	w := h.do(http.MethodGet, "/", "", "")
	require.Equal(h.t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(h.t, err)
	return doc
}

func TestJSON_ArticleFlow(t *testing.T) {
	h := newHarness(t, `{"title": "T", "content": "C"}`)

	resp := h.postJSON("/api/v1/select", `{"type": "article"}`)
	assert.Equal(t, "Selected page type: article", resp.View.Status)
	assert.Equal(t, "article", resp.View.SelectedType)

	resp = h.postJSON("/api/v1/scrape", `{"url": "https://news.example/a"}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "rendered", resp.Outcome)
	assert.True(t, resp.View.ResultVisible)
	assert.Equal(t, "T", resp.View.Title)
	assert.Equal(t, "C", resp.View.Content)
	assert.Equal(t, "https://news.example/a", resp.View.URL)
	assert.Equal(t, int32(1), h.calls.Load())
}

func TestJSON_RequiresTypeBeforeNetwork(t *testing.T) {
	h := newHarness(t, `{}`)

	resp := h.postJSON("/api/v1/scrape", `{"url": "https://news.example/a"}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "missing_type", resp.Outcome)
	assert.Equal(t, []string{controller.AlertSelectType}, resp.View.Alerts)
	assert.Equal(t, int32(0), h.calls.Load())
}

func TestJSON_RequiresURLBeforeNetwork(t *testing.T) {
	h := newHarness(t, `{}`)

	h.postJSON("/api/v1/select", `{"type": "product"}`)
	resp := h.postJSON("/api/v1/scrape", `{"url": ""}`)
	assert.Equal(t, "missing_url", resp.Outcome)
	assert.Equal(t, []string{controller.AlertEnterURL}, resp.View.Alerts)
	assert.Equal(t, int32(0), h.calls.Load())
}

func TestJSON_ServiceError(t *testing.T) {
	h := newHarness(t, `{"error": "X", "title": "ignored"}`)

	h.postJSON("/api/v1/select", `{"type": "product"}`)
	resp := h.postJSON("/api/v1/scrape", `{"url": "https://shop.example/1"}`)
	assert.Equal(t, "service_error", resp.Outcome)
	assert.Equal(t, "Error", resp.View.Title)
	assert.Equal(t, "X", resp.View.Content)
	assert.Empty(t, resp.View.Alerts)
}

func TestJSON_BadBody(t *testing.T) {
	h := newHarness(t, `{}`)
	w := h.do(http.MethodPost, "/api/v1/select", "application/json", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
}

func TestJSON_SessionsAreIsolated(t *testing.T) {
	h := newHarness(t, `{}`)
	h.postJSON("/api/v1/select", `{"type": "listing"}`)

	other := &harness{t: t, router: h.router}
	w := other.do(http.MethodGet, "/api/v1/view", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "", resp.View.SelectedType)
	assert.Equal(t, "", resp.View.Status)
}

func TestPage_ListingFlow(t *testing.T) {
	h := newHarness(t, `{"items": [{"title": "A"}, {"title": "B", "url": "https://shop.example/b", "price": "$2"}]}`)

	h.postForm("/select", url.Values{"type": {"listing"}})
	h.postForm("/scrape", url.Values{"url": {"https://shop.example/list"}})
	h.waitIdle()

	doc := h.page()
	assert.Equal(t, "Selected page type: listing", doc.Find("#selectedType").Text())
	assert.Equal(t, "Listing results", doc.Find("#articleTitle").Text())
	_, hidden := doc.Find("#result").Attr("style")
	assert.False(t, hidden)

	items := doc.Find("#articleContent .listing-item")
	require.Equal(t, 2, items.Length())
	assert.Contains(t, items.Eq(0).Text(), "A")
	assert.Equal(t, 0, items.Eq(0).Find(".listing-price").Length())
	assert.Equal(t, "$2", items.Eq(1).Find(".listing-price").Text())
	href, _ := items.Eq(1).Find("a").Attr("href")
	assert.Equal(t, "https://shop.example/b", href)

	value, _ := doc.Find("#urlInput").Attr("value")
	assert.Equal(t, "https://shop.example/list", value)
}

func TestPage_ResultHiddenInitially(t *testing.T) {
	h := newHarness(t, `{}`)
	doc := h.page()
	style, _ := doc.Find("#result").Attr("style")
	assert.Equal(t, "display:none", style)
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestPage_AlertDeliveredOnce(t *testing.T) {
	h := newHarness(t, `{}`)

	h.postForm("/scrape", url.Values{"url": {"https://news.example/a"}})
	h.waitIdle()

	script := h.page().Find("script").Text()
	assert.Contains(t, script, "alert(")
	assert.Contains(t, script, controller.AlertSelectType)

	assert.Equal(t, 0, h.page().Find("script").Length())
}

func TestPage_TransportFailureAlerts(t *testing.T) {
	h := newHarness(t, `not json`)

	h.postForm("/select", url.Values{"type": {"article"}})
	h.postForm("/scrape", url.Values{"url": {"https://news.example/a"}})
	h.waitIdle()

	doc := h.page()
	script := doc.Find("script").Text()
	assert.Contains(t, script, "console.error(")
	assert.Contains(t, script, "Check console (F12)")
	assert.Equal(t, "Loading...", doc.Find("#articleTitle").Text())
	assert.Equal(t, "Working...", doc.Find("#articleContent").Text())
}

func TestPage_PlaceholderWhileServiceWorks(t *testing.T) {
	h, release := newGatedHarness(t, `{"title": "T", "content": "C"}`)

	h.postForm("/select", url.Values{"type": {"article"}})
	h.postForm("/scrape", url.Values{"url": {"https://news.example/a"}})

	var doc *goquery.Document
	require.Eventually(t, func() bool {
		doc = h.page()
		return doc.Find("#articleTitle").Text() == controller.PlaceholderTitle
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, controller.PlaceholderContent, doc.Find("#articleContent").Text())
	_, hidden := doc.Find("#result").Attr("style")
	assert.False(t, hidden)
	refresh, _ := doc.Find(`meta[http-equiv="refresh"]`).Attr("content")
	assert.Equal(t, "1", refresh)

	release()
	h.waitIdle()

	doc = h.page()
	assert.Equal(t, "T", doc.Find("#articleTitle").Text())
	assert.Equal(t, "C", doc.Find("#articleContent").Text())
	assert.Equal(t, 0, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestJSON_ViewReportsPending(t *testing.T) {
	h, _ := newGatedHarness(t, `{"title": "T"}`)

	h.postJSON("/api/v1/select", `{"type": "article"}`)
	h.postForm("/scrape", url.Values{"url": {"https://news.example/a"}})

	w := h.do(http.MethodGet, "/api/v1/view", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.View.Pending)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, `{"title": "T"}`, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 0.001
		cfg.RateLimit.Burst = 1
	})

	h.postJSON("/api/v1/select", `{"type": "article"}`)
	h.postJSON("/api/v1/scrape", `{"url": "https://news.example/a"}`)

	w := h.do(http.MethodPost, "/api/v1/scrape", "application/json", `{"url": "https://news.example/b"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, int32(1), h.calls.Load())
}

func TestHealth(t *testing.T) {
	h := newHarness(t, `{}`)
	h.page()

	w := h.do(http.MethodGet, "/api/v1/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.Sessions)
	assert.Equal(t, h.service.URL, resp.Service)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, `{}`)
	w := h.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scrapedesk_sessions")
}
