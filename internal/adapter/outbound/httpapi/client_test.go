package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/osvs/memberportal/internal/domain/apierror"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/domain/notice"
	"github.com/osvs/memberportal/internal/domain/request"
)

// fakeBackend is a cookie-authenticated portal backend.
type fakeBackend struct {
	t       *testing.T
	server  *httptest.Server
	refresh atomic.Int32
	// refreshStatus is returned by /auth/refresh.
	refreshStatus atomic.Int32

	mu         sync.Mutex
	requestIDs []string
}

func newFakeBackend(t *testing.T, routes func(r chi.Router)) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{t: t}
	fb.refreshStatus.Store(http.StatusOK)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			fb.mu.Lock()
			fb.requestIDs = append(fb.requestIDs, req.Header.Get(HeaderRequestID))
			fb.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/refresh", func(w http.ResponseWriter, req *http.Request) {
			fb.refresh.Add(1)
			status := int(fb.refreshStatus.Load())
			if status == http.StatusOK {
				http.SetCookie(w, &http.Cookie{Name: "access", Value: "fresh", Path: "/"})
			}
			w.WriteHeader(status)
		})
		routes(r)
	})

	fb.server = httptest.NewServer(r)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) client(opts ...Option) *Client {
	return NewClient(append([]Option{WithBaseURL(fb.server.URL)}, opts...)...)
}

func (fb *fakeBackend) ids() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.requestIDs...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requireAccess answers 401 unless the fresh access cookie is present.
func requireAccess(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("access"); err != nil || c.Value != "fresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token expired"})
			return
		}
		next(w, r)
	}
}

func TestClient_RefreshAndRetryOnce(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/lodges/{id}", requireAccess(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, member.Lodge{ID: 7, Name: "Norrsken"})
		}))
	})
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := fb.client(WithMetrics(m))

	got, err := c.GetLodge(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetLodge() error = %v", err)
	}
	if got.Name != "Norrsken" {
		t.Errorf("GetLodge() = %+v", got)
	}
	if n := fb.refresh.Load(); n != 1 {
		t.Errorf("refresh called %d times, want 1", n)
	}

	ids := fb.ids()
	if len(ids) != 3 {
		t.Fatalf("backend saw %d requests, want 3 (call, refresh, retry)", len(ids))
	}
	if ids[0] == "" || ids[0] == ids[2] {
		t.Errorf("request IDs = %v, want distinct non-empty IDs per attempt", ids)
	}
	if v := testutil.ToFloat64(m.Refreshes.WithLabelValues("ok")); v != 1 {
		t.Errorf("ok refreshes = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("get", "200")); v != 1 {
		t.Errorf("GET 200 requests = %v, want 1", v)
	}
}

func TestClient_FailedRefreshSurfacesOriginal401(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			fb := newFakeBackend(t, func(r chi.Router) {
				r.Get("/auth/me", requireAccess(func(w http.ResponseWriter, r *http.Request) {
					t.Error("handler should not be reached")
				}))
			})
			fb.refreshStatus.Store(int32(status))
			c := fb.client()

			_, err := c.Me(context.Background())
			var te *apierror.TransportError
			if !errors.As(err, &te) {
				t.Fatalf("Me() error = %v, want TransportError", err)
			}
			if te.Status != http.StatusUnauthorized || te.Message != "Token expired" {
				t.Errorf("error = %+v, want the original 401", te)
			}
			if n := fb.refresh.Load(); n != 1 {
				t.Errorf("refresh called %d times, want 1", n)
			}
		})
	}
}

func TestClient_RetryHappensAtMostOnce(t *testing.T) {
	var calls atomic.Int32
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Still expired"})
		})
	})
	c := fb.client()

	_, err := c.ListPosts(context.Background(), member.ListQuery{})
	if !apierror.IsUnauthorized(err) {
		t.Fatalf("ListPosts() error = %v, want 401", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("endpoint called %d times, want 2", n)
	}
	if n := fb.refresh.Load(); n != 1 {
		t.Errorf("refresh called %d times, want 1", n)
	}
}

func TestClient_ErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "error field wins",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error":"Ogiltig e-post","message":"ignored","code":"BAD_EMAIL"}`,
			wantMessage: "Ogiltig e-post",
			wantCode:    "BAD_EMAIL",
		},
		{
			name:        "message field",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `{"message":"Already registered"}`,
			wantMessage: "Already registered",
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			contentType: "text/plain",
			body:        "upstream down",
			wantMessage: "upstream down",
		},
		{
			name:        "empty body falls back to status text",
			status:      http.StatusForbidden,
			wantMessage: "Åtkomst nekad",
		},
		{
			name:        "unknown status without body",
			status:      http.StatusTeapot,
			wantMessage: "Request failed with status 418",
		},
		{
			name:        "html body is not a message",
			status:      http.StatusInternalServerError,
			contentType: "text/html",
			body:        "<html><body>oops</body></html>",
			wantMessage: "Serverfel — försök igen senare",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t, func(r chi.Router) {
				r.Get("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
					if tt.contentType != "" {
						w.Header().Set("Content-Type", tt.contentType)
					}
					w.WriteHeader(tt.status)
					_, _ = io.WriteString(w, tt.body)
				})
			})

			_, err := fb.client().GetEvent(context.Background(), 1)
			var te *apierror.TransportError
			if !errors.As(err, &te) {
				t.Fatalf("GetEvent() error = %v, want TransportError", err)
			}
			if te.Status != tt.status {
				t.Errorf("Status = %d, want %d", te.Status, tt.status)
			}
			if te.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", te.Message, tt.wantMessage)
			}
			if te.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", te.Code, tt.wantCode)
			}
		})
	}
}

func TestClient_DetailsPreserved(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Post("/lodges", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Invalid body",
				"details": []map[string]string{{"path": "name", "message": "taken"}},
			})
		})
	})

	_, err := fb.client().CreateLodge(context.Background(), member.LodgeBody{Name: "Norrsken"})
	var te *apierror.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("CreateLodge() error = %v", err)
	}
	details, ok := te.Details.([]any)
	if !ok || len(details) != 1 {
		t.Errorf("Details = %#v, want one entry", te.Details)
	}
}

func TestClient_NotFound(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Post not found"})
		})
	})

	_, err := fb.client().GetPost(context.Background(), 99)
	if !apierror.IsNotFound(err) {
		t.Fatalf("GetPost() error = %v, want not found", err)
	}
	if c := apierror.Classify(err); c.Kind != apierror.KindNotFound {
		t.Errorf("Kind = %v, want not_found", c.Kind)
	}
}

func TestClient_EmptySuccessBody(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Delete("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/users/{id}/lodges", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	c := fb.client()

	if err := c.DeleteEvent(context.Background(), 3); err != nil {
		t.Errorf("DeleteEvent() error = %v", err)
	}
	ul, err := c.GetUserLodge(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetUserLodge() error = %v", err)
	}
	if ul.Lodge != nil {
		t.Errorf("Lodge = %+v, want nil", ul.Lodge)
	}
}

func TestClient_ValidationNeverReachesNetwork(t *testing.T) {
	var hits atomic.Int32
	fb := newFakeBackend(t, func(r chi.Router) {
		r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusOK)
		})
	})
	c := fb.client()
	ctx := context.Background()

	errs := []error{
		c.SetRoles(ctx, 1, []int64{2, 0}),
		c.SetRSVP(ctx, 1, "maybe"),
		c.AddAchievement(ctx, 1, member.AddAchievementBody{}),
	}
	_, err := c.CreatePost(ctx, member.PostBody{}, nil)
	errs = append(errs, err)
	_, err = c.CreateMembershipPayment(ctx, member.ProviderStripe, member.MembershipBody{Year: 12})
	errs = append(errs, err)
	_, err = c.Login(ctx, "not-an-email", "pw")
	errs = append(errs, err)

	for i, err := range errs {
		var ve *apierror.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("call %d error = %v, want ValidationError", i, err)
		}
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("backend hit %d times, want 0", n)
	}
}

func TestClient_NetworkErrorIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(WithBaseURL(url)).ListLodges(context.Background(), member.ListQuery{})
	var ue *apierror.UnknownError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UnknownError", err)
	}
	if c := apierror.Classify(err); c.Kind != apierror.KindUnknown || c.Message == "" {
		t.Errorf("Classify() = %+v", c)
	}
}

func TestRouteOf(t *testing.T) {
	tests := map[string]string{
		"/events/12/rsvp":              "/events/{id}/rsvp",
		"/stripe/membership/status/ab": "/stripe/membership/status/{id}",
		"/users?limit=2":               "/users",
		"/auth/me":                     "/auth/me",
	}
	for in, want := range tests {
		if got := routeOf(in); got != want {
			t.Errorf("routeOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func jsonDecode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func TestClient_TimeoutIsTransportFailure(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/lodges", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			writeJSON(w, http.StatusOK, []member.Lodge{})
		})
	})
	c := fb.client(WithTimeout(50 * time.Millisecond))

	start := time.Now()
	_, err := c.ListLodges(context.Background(), member.ListQuery{})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("ListLodges() took %v, want the 50ms timeout to apply", elapsed)
	}
	var ue *apierror.UnknownError
	if !errors.As(err, &ue) {
		t.Fatalf("ListLodges() error = %T %v, want *apierror.UnknownError", err, err)
	}
	if got := apierror.Classify(err).Kind; got != apierror.KindUnknown {
		t.Errorf("Classify().Kind = %v, want KindUnknown", got)
	}

	notices := notice.New(notice.WithDuration(0))
	defer notices.Close()
	h := request.New[[]member.Lodge](notices)
	defer h.Close()

	if _, err := h.Run(context.Background(), func(ctx context.Context) ([]member.Lodge, error) {
		return c.ListLodges(ctx, member.ListQuery{})
	}); err == nil {
		t.Fatal("Run() error = nil, want timeout")
	}
	if msg, ok := notices.Current(); !ok || msg == "" {
		t.Error("timeout did not reach the notice channel")
	}
	if h.NotFound() {
		t.Error("NotFound() = true after a timeout")
	}
}
