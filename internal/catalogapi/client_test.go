package catalogapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestArticleInfoSendsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("userlogin") != "login" || q.Get("userpsw") != "secret" {
			t.Errorf("missing credentials in query: %s", r.URL.RawQuery)
		}
		if q.Get("brand") != "Bosch" || q.Get("number") != "0986452041" {
			t.Errorf("unexpected article params: %s", r.URL.RawQuery)
		}
		if q.Get("format") != "bnphic" {
			t.Errorf("format = %q, want bnphic", q.Get("format"))
		}
		w.Write([]byte(`{
			"brand": "Bosch",
			"number": "0986452041",
			"descr": "Oil filter",
			"properties": {"height": "80"},
			"images": [{"name": "abc.jpg"}, {"name": ""}],
			"crosses": [{"brand": "Mann", "number": "W6018", "reliable": true}]
		}`))
	}))
	defer srv.Close()

	c := New(Config{Host: srv.URL, Login: "login", Password: "secret"}, srv.Client())
	info, err := c.ArticleInfo(context.Background(), "Bosch", "0986452041")
	if err != nil {
		t.Fatalf("ArticleInfo: %v", err)
	}
	if info.Descr != "Oil filter" {
		t.Errorf("descr = %q", info.Descr)
	}
	if len(info.Crosses) != 1 || info.Crosses[0].Brand != "Mann" {
		t.Errorf("unexpected crosses: %+v", info.Crosses)
	}
	urls := info.ImageURLs()
	if len(urls) != 1 || urls[0] != ImageCDN+"abc.jpg" {
		t.Errorf("unexpected image urls: %v", urls)
	}
}

func TestArticleInfoNotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such article", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{Host: srv.URL}, srv.Client())
	info, err := c.ArticleInfo(context.Background(), "Bosch", "nope")
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if info.Brand != "" || len(info.Crosses) != 0 {
		t.Errorf("expected zero-valued response, got %+v", info)
	}
}

func TestArticleInfoUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Config{Host: srv.URL}, srv.Client())
	if _, err := c.ArticleInfo(context.Background(), "Bosch", "0986452041"); err == nil {
		t.Fatal("expected error on upstream 403")
	}
}

func TestSearchTips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tips" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"brand":"Bosch","number":"0986","description":"filter"}]`))
	}))
	defer srv.Close()

	c := New(Config{Host: srv.URL}, srv.Client())
	tips, err := c.SearchTips(context.Background(), "0986")
	if err != nil {
		t.Fatalf("SearchTips: %v", err)
	}
	if len(tips) != 1 || tips[0].Brand != "Bosch" {
		t.Errorf("unexpected tips: %+v", tips)
	}
}
