package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ui-kit-catalog/internal/catalog"
	"ui-kit-catalog/internal/config"
	"ui-kit-catalog/internal/devstub"
	"ui-kit-catalog/internal/generator"
	"ui-kit-catalog/internal/logging"
	"ui-kit-catalog/internal/model"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "0", CSRF: false, PageTTL: time.Minute},
		Service: config.ServiceConfig{BaseURL: baseURL, Timeout: 5 * time.Second},
		Metrics: config.MetricsConfig{Enabled: true},
		Log:     config.LogConfig{Level: "debug", Format: "text"},
	}
}

// Helper to create an application talking to upstream
func newTestApplication(t *testing.T, cfg *config.Config) *application {
	t.Helper()
	app, err := newApplication(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("newApplication() failed: %v", err)
	}
	return app
}

// stubUpstream runs the local packaging stub with the fallback catalog.
func stubUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(devstub.New(catalog.Fallback(), generator.DefaultGeneratorConfig(), nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

var pageIDPattern = regexp.MustCompile(`data-page-id="([0-9a-f-]+)"`)

// mount loads / and returns the page ID it created.
func mount(t *testing.T, router http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET / returned %d", rr.Code)
	}
	m := pageIDPattern.FindStringSubmatch(rr.Body.String())
	if m == nil {
		t.Fatalf("no page id in body:\n%s", rr.Body.String())
	}
	return m[1]
}

func post(router http.Handler, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestStaticFileHandler(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	expectedContentType := "text/css; charset=utf-8"
	if ctype := rr.Header().Get("Content-Type"); ctype != expectedContentType {
		t.Errorf("handler returned wrong content type: got %q want %q", ctype, expectedContentType)
	}
	if !strings.Contains(rr.Body.String(), ".card") {
		t.Error("stylesheet body looks wrong")
	}
}

func TestHandleRootRequest(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("Root handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	expectedContentType := "text/html; charset=utf-8"
	if ctype := rr.Header().Get("Content-Type"); ctype != expectedContentType {
		t.Errorf("Root handler returned wrong content type: got %q want %q", ctype, expectedContentType)
	}
	body := rr.Body.String()
	for _, want := range []string{"TRIMBLE UI KITS", "Login page", "LoginPage.xaml.cs"} {
		if !strings.Contains(body, want) {
			t.Errorf("Root body is missing %q", want)
		}
	}
	if strings.Contains(body, `id="download-form"`) {
		t.Error("download form shown before anything is selected")
	}
}

func TestEachMountStartsEmpty(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()

	first := mount(t, router)
	post(router, "/p/"+first+"/toggle/LoginPage", nil, true)

	second := mount(t, router)
	if first == second {
		t.Fatal("two mounts share a page id")
	}
	page, err := app.pages.Get(second)
	if err != nil {
		t.Fatalf("pages.Get() failed: %v", err)
	}
	if page.Selection.Len() != 0 {
		t.Errorf("new mount starts with %d selected templates", page.Selection.Len())
	}
}

func TestCatalogFallbackWhenServiceDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	app := newTestApplication(t, testConfig(down.URL))
	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "A simple Login UI for mobile applications.") {
		t.Errorf("expected the fallback catalog, got %d:\n%s", rr.Code, rr.Body.String())
	}
}

func TestFallbackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "- name: Dashboard\n  title: Dashboard page\n  dependencies:\n    - name: Dashboard.xaml\n      folder: Views\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(empty.Close)

	cfg := testConfig(empty.URL)
	cfg.Catalog.FallbackFile = path
	app := newTestApplication(t, cfg)

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if body := rr.Body.String(); !strings.Contains(body, "Dashboard page") || strings.Contains(body, "Login page") {
		t.Errorf("fallback file not used:\n%s", body)
	}
}

func TestToggleHTMX(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()
	id := mount(t, router)

	rr := post(router, "/p/"+id+"/toggle/LoginPage", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle returned %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="panel"`) || !strings.Contains(body, `id="download-form"`) {
		t.Errorf("panel fragment missing download form:\n%s", body)
	}
	if !strings.Contains(body, `hx-swap-oob="true"`) || !strings.Contains(body, `value="LoginPage" checked`) {
		t.Errorf("card checkbox not swapped out of band:\n%s", body)
	}

	rr = post(router, "/p/"+id+"/toggle/LoginPage", nil, true)
	if strings.Contains(rr.Body.String(), `id="download-form"`) {
		t.Error("download form still shown after deselecting")
	}
}

func TestTogglePlainRedirects(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()
	id := mount(t, router)

	rr := post(router, "/p/"+id+"/toggle/LoginPage", nil, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/p/"+id {
		t.Fatalf("plain toggle = %d %q, want 303 to the page", rr.Code, rr.Header().Get("Location"))
	}

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/p/"+id, nil))
	if !strings.Contains(get.Body.String(), `id="download-form"`) {
		t.Error("page does not show the selection after a plain toggle")
	}
}

func TestToggleUnknownTemplate(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()
	id := mount(t, router)

	rr := post(router, "/p/"+id+"/toggle/"+url.PathEscape("No Such Page"), nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle returned %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "hx-swap-oob") {
		t.Error("unknown template produced a card swap")
	}
	page, _ := app.pages.Get(id)
	if page.Selection.Len() != 0 {
		t.Errorf("unknown template was selected")
	}
}

func TestExpiredPageRemounts(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()

	rr := post(router, "/p/does-not-exist/toggle/LoginPage", nil, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Errorf("plain request = %d %q, want 303 to /", rr.Code, rr.Header().Get("Location"))
	}

	rr = post(router, "/p/does-not-exist/toggle/LoginPage", nil, true)
	if rr.Header().Get("HX-Redirect") != "/" {
		t.Errorf("htmx request missing HX-Redirect, headers: %v", rr.Header())
	}
}

func TestOptionsHandler(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()
	id := mount(t, router)
	post(router, "/p/"+id+"/toggle/LoginPage", nil, true)

	rr := post(router, "/p/"+id+"/options", url.Values{
		"package_type": {"runnable"},
		"app_name":     {"Contoso"},
		"startup_page": {"LoginPage"},
	}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("options returned %d", rr.Code)
	}
	if body := rr.Body.String(); strings.Contains(body, "disabled") || !strings.Contains(body, `value="Contoso"`) {
		t.Errorf("download form not updated:\n%s", body)
	}

	// switching back to plain files disables the input, so the browser stops sending it
	post(router, "/p/"+id+"/options", url.Values{"package_type": {"plain"}, "startup_page": {"LoginPage"}}, true)
	page, _ := app.pages.Get(id)
	want := model.PackagingOptions{AppName: "Contoso", StartupPage: "LoginPage", Runnable: false}
	if got := page.Options(); got != want {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}
}

func TestOptionsResetWhenSelectionEmpties(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()
	id := mount(t, router)

	post(router, "/p/"+id+"/toggle/LoginPage", nil, true)
	post(router, "/p/"+id+"/options", url.Values{"package_type": {"runnable"}, "app_name": {"Foo"}}, true)
	post(router, "/p/"+id+"/toggle/LoginPage", nil, true)

	page, _ := app.pages.Get(id)
	if got := page.Options(); got != (model.PackagingOptions{}) {
		t.Errorf("Options() after emptying the selection = %+v", got)
	}
}

func TestDownload(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()
	id := mount(t, router)
	post(router, "/p/"+id+"/toggle/LoginPage", nil, true)

	rr := post(router, "/p/"+id+"/download", url.Values{
		"package_type": {"runnable"},
		"app_name":     {"Foo"},
		"startup_page": {""},
	}, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("download returned %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != "attachment; filename=Foo.zip" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	data := rr.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("download is not a zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["Views/LoginPage.xaml"] || !names["Foo.csproj"] {
		t.Errorf("unexpected archive entries: %v", names)
	}
}

func TestDownloadRequestBody(t *testing.T) {
	catalogJSON, _ := catalog.Encode([]model.Template{{Name: "A", Title: "A"}, {Name: "B", Title: "B"}})
	var got model.BundleRequest
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write(catalogJSON)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte("PK"))
	}))
	t.Cleanup(upstream.Close)

	app := newTestApplication(t, testConfig(upstream.URL))
	router := app.routes()
	id := mount(t, router)
	post(router, "/p/"+id+"/toggle/A", nil, true)
	post(router, "/p/"+id+"/toggle/B", nil, true)

	rr := post(router, "/p/"+id+"/download", url.Values{"package_type": {"runnable"}, "app_name": {"Foo"}}, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("download returned %d", rr.Code)
	}
	if strings.Join(got.Templates, ",") != "A,B" || got.PackageType != model.PackageRunnable || got.AppName != "Foo" {
		t.Errorf("bundle request = %+v", got)
	}
}

func TestDownloadFailuresAreSilent(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			calls.Add(1)
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(upstream.Close)

	app := newTestApplication(t, testConfig(upstream.URL))
	router := app.routes()
	id := mount(t, router)

	// empty selection: nothing is sent
	rr := post(router, "/p/"+id+"/download", nil, false)
	if rr.Code != http.StatusNoContent || calls.Load() != 0 {
		t.Errorf("empty download = %d with %d upstream calls, want 204 and none", rr.Code, calls.Load())
	}

	post(router, "/p/"+id+"/toggle/LoginPage", nil, true)
	rr = post(router, "/p/"+id+"/download", nil, false)
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Errorf("failed download = %d %q, want an empty 204", rr.Code, rr.Body.String())
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1", calls.Load())
	}
}

func TestCSRFRejectsTokenlessPost(t *testing.T) {
	cfg := testConfig(stubUpstream(t).URL)
	cfg.Server.CSRF = true
	app := newTestApplication(t, cfg)
	router := app.routes()
	id := mount(t, router)

	rr := post(router, "/p/"+id+"/toggle/LoginPage", nil, true)
	if rr.Code != http.StatusForbidden {
		t.Errorf("tokenless POST returned %d, want 403", rr.Code)
	}
}

var (
	headerTokenPattern = regexp.MustCompile(`hx-headers='\{"X-CSRF-Token": "([^"]+)"\}'`)
	formTokenPattern   = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
)

func TestCSRFAcceptsTokens(t *testing.T) {
	cfg := testConfig(stubUpstream(t).URL)
	cfg.Server.CSRF = true
	app := newTestApplication(t, cfg)
	router := app.routes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET / returned %d", rr.Code)
	}
	body := rr.Body.String()
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("GET / set no CSRF cookie")
	}
	id := pageIDPattern.FindStringSubmatch(body)
	headerToken := headerTokenPattern.FindStringSubmatch(body)
	formToken := formTokenPattern.FindStringSubmatch(body)
	if id == nil || headerToken == nil || formToken == nil {
		t.Fatalf("page id or CSRF tokens missing from body:\n%s", body)
	}

	withCookies := func(req *http.Request) *httptest.ResponseRecorder {
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	req := httptest.NewRequest(http.MethodPost, "/p/"+id[1]+"/toggle/LoginPage", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", html.UnescapeString(headerToken[1]))
	if rr := withCookies(req); rr.Code != http.StatusOK {
		t.Fatalf("toggle with header token returned %d", rr.Code)
	}

	form := url.Values{
		"csrf_token":   {html.UnescapeString(formToken[1])},
		"package_type": {"plain"},
	}
	req = httptest.NewRequest(http.MethodPost, "/p/"+id[1]+"/download", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = withCookies(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("download with form token returned %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != "attachment; filename=trimble-ui-kit.zip" {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApplication(t, testConfig(stubUpstream(t).URL))
	router := app.routes()
	mount(t, router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("/healthz = %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `uikit_catalog_loads_total{outcome="ok"} 1`) {
		t.Errorf("metrics missing catalog load:\n%s", body)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(stubUpstream(t).URL)
	cfg.Metrics.Enabled = false
	app := newTestApplication(t, cfg)

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("/metrics with metrics disabled = %d, want 404", rr.Code)
	}
}

func TestOptionsFromForm(t *testing.T) {
	prev := model.PackagingOptions{AppName: "Keep", StartupPage: "A", Runnable: true}
	tests := []struct {
		name string
		form url.Values
		want model.PackagingOptions
	}{
		{"nothing submitted", url.Values{}, prev},
		{"plain drops nothing", url.Values{"package_type": {"plain"}}, model.PackagingOptions{AppName: "Keep", StartupPage: "A"}},
		{"cleared name", url.Values{"app_name": {""}}, model.PackagingOptions{StartupPage: "A", Runnable: true}},
		{"blank startup", url.Values{"startup_page": {""}}, model.PackagingOptions{AppName: "Keep", Runnable: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := optionsFromForm(tt.form, prev); got != tt.want {
				t.Errorf("optionsFromForm() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
