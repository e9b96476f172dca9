package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type locatorFunc func(ctx context.Context, ip string) (Location, error)

func (f locatorFunc) Locate(ctx context.Context, ip string) (Location, error) {
	return f(ctx, ip)
}

func TestResolve_Success(t *testing.T) {
	loc := locatorFunc(func(ctx context.Context, ip string) (Location, error) {
		return Location{Country: "Germany", City: "Berlin"}, nil
	})

	res := Resolve(context.Background(), loc, "1.2.3.4", time.Second)
	if !res.Resolved {
		t.Fatal("expected resolved result")
	}
	want := Location{Country: "Germany", Region: UnknownValue, City: "Berlin"}
	if res.Location != want {
		t.Fatalf("unexpected location %#v", res.Location)
	}
}

func TestResolve_ErrorFallsBackToUnknown(t *testing.T) {
	loc := locatorFunc(func(ctx context.Context, ip string) (Location, error) {
		return Location{}, errors.New("network unreachable")
	})

	res := Resolve(context.Background(), loc, "1.2.3.4", time.Second)
	if res.Resolved || res.Location != Unknown {
		t.Fatalf("expected unknown, got %#v", res)
	}
}

func TestResolve_TimeoutFallsBackToUnknown(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	loc := locatorFunc(func(ctx context.Context, ip string) (Location, error) {
		<-release // ignores ctx on purpose
		return Location{Country: "late"}, nil
	})

	start := time.Now()
	res := Resolve(context.Background(), loc, "1.2.3.4", 20*time.Millisecond)
	if res.Resolved || res.Location != Unknown {
		t.Fatalf("expected unknown, got %#v", res)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("resolve was not bounded: %v", elapsed)
	}
}

func TestResolve_PanicFallsBackToUnknown(t *testing.T) {
	loc := locatorFunc(func(ctx context.Context, ip string) (Location, error) {
		panic("boom")
	})

	res := Resolve(context.Background(), loc, "1.2.3.4", time.Second)
	if res.Resolved {
		t.Fatal("expected unknown after panic")
	}
}

func TestResolve_EmptyIPSkipsLookup(t *testing.T) {
	called := false
	loc := locatorFunc(func(ctx context.Context, ip string) (Location, error) {
		called = true
		return Location{}, nil
	})

	res := Resolve(context.Background(), loc, "", time.Second)
	if called {
		t.Fatal("locator must not be called without an ip")
	}
	if res.Location != Unknown {
		t.Fatalf("expected unknown, got %#v", res.Location)
	}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	failing := locatorFunc(func(ctx context.Context, ip string) (Location, error) {
		return Location{}, ErrNotFound
	})
	ok := locatorFunc(func(ctx context.Context, ip string) (Location, error) {
		return Location{Country: "France"}, nil
	})

	loc, err := Chain{failing, ok}.Locate(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Country != "France" {
		t.Fatalf("unexpected location %#v", loc)
	}

	if _, err := (Chain{failing}).Locate(context.Background(), "1.2.3.4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPLocator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("unexpected user agent %q", got)
		}
		switch r.URL.Path {
		case "/8.8.8.8/json/":
			w.Write([]byte(`{"country_name":"United States","region":"California","city":"Mountain View"}`))
		case "/10.0.0.1/json/":
			w.Write([]byte(`{"error":true,"reason":"Reserved IP Address"}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	l := NewHTTPLocator(HTTPConfig{Endpoint: srv.URL + "/", UserAgent: "test-agent"})

	loc, err := l.Locate(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Location{Country: "United States", Region: "California", City: "Mountain View"}
	if loc != want {
		t.Fatalf("unexpected location %#v", loc)
	}

	if _, err := l.Locate(context.Background(), "10.0.0.1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := l.Locate(context.Background(), "9.9.9.9"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}

	if _, err := l.Locate(context.Background(), ""); !errors.Is(err, ErrNoIP) {
		t.Fatalf("expected ErrNoIP, got %v", err)
	}
}
