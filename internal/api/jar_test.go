// ABOUTME: Tests for the durable cookie jar
// ABOUTME: Verifies persistence across instances, expiry handling, and clearing

package api

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileJar_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	u, _ := url.Parse("https://api.example.com")

	jar, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jar.SetCookies(u, []*http.Cookie{
		{Name: "access_token", Value: "abc", Path: "/", Expires: time.Now().Add(time.Hour)},
	})

	reloaded, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cookies := reloaded.Cookies(u)
	if len(cookies) != 1 || cookies[0].Value != "abc" {
		t.Fatalf("expected persisted cookie, got %v", cookies)
	}
}

func TestFileJar_DropsExpiredOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	u, _ := url.Parse("https://api.example.com")

	jar, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jar.SetCookies(u, []*http.Cookie{
		{Name: "access_token", Value: "abc", Path: "/", Expires: time.Now().Add(10 * time.Millisecond)},
	})

	time.Sleep(20 * time.Millisecond)

	reloaded, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cookies := reloaded.Cookies(u); len(cookies) != 0 {
		t.Errorf("expected expired cookie dropped, got %v", cookies)
	}
}

func TestFileJar_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	u, _ := url.Parse("https://api.example.com")

	jar, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jar.SetCookies(u, []*http.Cookie{{Name: "access_token", Value: "abc", Path: "/"}})

	if err := jar.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cookies := jar.Cookies(u); len(cookies) != 0 {
		t.Errorf("expected no cookies after clear, got %v", cookies)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected snapshot file removed after clear")
	}
}

func TestFileJar_MaxAgeDeletionRemovesCookie(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	u, _ := url.Parse("https://api.example.com")

	jar, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jar.SetCookies(u, []*http.Cookie{{Name: "access_token", Value: "abc", Path: "/"}})
	jar.SetCookies(u, []*http.Cookie{{Name: "access_token", Value: "", Path: "/", MaxAge: -1}})

	reloaded, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cookies := reloaded.Cookies(u); len(cookies) != 0 {
		t.Errorf("expected deleted cookie gone after reload, got %v", cookies)
	}
}

func TestFileJar_CorruptSnapshotStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jar, err := NewFileJar(path)
	if err != nil {
		t.Fatalf("expected corrupt snapshot to be tolerated, got %v", err)
	}
	u, _ := url.Parse("https://api.example.com")
	if cookies := jar.Cookies(u); len(cookies) != 0 {
		t.Errorf("expected empty jar, got %v", cookies)
	}
}
