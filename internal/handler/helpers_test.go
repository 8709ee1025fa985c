package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/checkout"
	"github.com/biztalbox/avaya-food-ordering/internal/handler"
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	mw "github.com/biztalbox/avaya-food-ordering/internal/middleware"
	"github.com/biztalbox/avaya-food-ordering/internal/profile"
	"github.com/biztalbox/avaya-food-ordering/internal/session"
	"github.com/biztalbox/avaya-food-ordering/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	testSecret   = "test-secret"
	testLocation = "sukhdevvihar"
)

// --- Mocks ---

type mockMenuSource struct {
	menuFn func(ctx context.Context) (*menu.Menu, error)
}

func (m *mockMenuSource) Menu(ctx context.Context) (*menu.Menu, error) {
	return m.menuFn(ctx)
}

func staticMenu(m *menu.Menu) *mockMenuSource {
	return &mockMenuSource{menuFn: func(context.Context) (*menu.Menu, error) { return m, nil }}
}

func failingMenu() *mockMenuSource {
	return &mockMenuSource{menuFn: func(context.Context) (*menu.Menu, error) { return nil, menu.ErrMenuUnavailable }}
}

type mockSubmitter struct {
	mu       sync.Mutex
	calls    int
	last     *checkout.SaveOrderRequest
	submitFn func(ctx context.Context, order *checkout.SaveOrderRequest) (json.RawMessage, error)
}

func (m *mockSubmitter) Submit(ctx context.Context, order *checkout.SaveOrderRequest) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls++
	m.last = order
	fn := m.submitFn
	m.mu.Unlock()
	if fn == nil {
		return json.RawMessage(`{"success":"1"}`), nil
	}
	return fn(ctx, order)
}

func (m *mockSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type staticProfile struct{}

func (staticProfile) Resolve(context.Context) profile.Profile { return profile.Default }

type mockNotifier struct {
	mu     sync.Mutex
	events map[uuid.UUID][]ws.Event
	closed []uuid.UUID
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{events: make(map[uuid.UUID][]ws.Event)}
}

func (m *mockNotifier) BroadcastToSession(id uuid.UUID, e ws.Event) {
	m.mu.Lock()
	m.events[id] = append(m.events[id], e)
	m.mu.Unlock()
}

func (m *mockNotifier) CloseSession(id uuid.UUID) {
	m.mu.Lock()
	m.closed = append(m.closed, id)
	m.mu.Unlock()
}

func (m *mockNotifier) types(id uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events[id] {
		out = append(out, e.Type)
	}
	return out
}

// --- Fixtures ---

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testMenu() *menu.Menu {
	return &menu.Menu{
		Restaurant: menu.Restaurant{ID: "ab12cd", Name: "Avaya Cafe", Address: "Sukhdev Vihar", Contact: "9876500000"},
		Categories: []menu.Category{
			{
				ID: "1", Name: "Coffee", Layout: "right", Background: "default",
				Items: []menu.Item{
					{ID: "101", CategoryID: "1", Name: "Cappuccino", Price: d("150"), IsVeg: true, Description: "Milky espresso"},
				},
			},
			{
				ID: "2", Name: "Pizza", Layout: "left", Background: "dark",
				Items: []menu.Item{
					{ID: "201", CategoryID: "2", Name: "Margherita", Price: d("0"), IsVeg: true, Variations: []menu.Variation{
						{ID: "v-half", Name: "Half", Price: d("250")},
						{ID: "v-full", Name: "Full", Price: d("450")},
					}},
					{ID: "202", CategoryID: "2", Name: "BBQ Chicken", Price: d("300")},
				},
			},
		},
		Taxes: []menu.TaxRule{
			{ID: "t1", Name: "CGST", Percent: d("2.5"), Active: true},
			{ID: "t2", Name: "SGST", Percent: d("2.5"), Active: true},
		},
		Discounts: []menu.DiscountRule{
			{ID: "d1", Name: "FLAT50", Kind: menu.DiscountFixed, Amount: d("50"), MinOrderAmount: d("500"), Active: true},
		},
	}
}

// --- Environment ---

type testEnv struct {
	router    chi.Router
	sessions  *session.Registry
	notifier  *mockNotifier
	submitter *mockSubmitter
}

func newTestEnv(t *testing.T, menus handler.MenuSource) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	sub := &mockSubmitter{}
	co := checkout.NewService(sub, staticProfile{}, checkout.Options{
		ConfirmDelay: 100 * time.Millisecond,
		OrderIDs:     func() string { return "1700000000123" },
	}, logger)
	reg := session.NewRegistry(co, logger)
	notifier := newMockNotifier()

	sh := handler.NewSessionHandler(reg, menus, notifier, testSecret, testLocation, logger)
	ch := handler.NewCartHandler(reg, menus, notifier, logger)
	coh := handler.NewCheckoutHandler(reg, notifier, logger)

	r := chi.NewRouter()
	sh.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(testSecret))
		sh.RegisterCurrentRoutes(r)
		r.Route("/cart", ch.RegisterRoutes)
		r.Route("/checkout", coh.RegisterRoutes)
	})
	return &testEnv{router: r, sessions: reg, notifier: notifier, submitter: sub}
}

// startSession opens a root-location session and returns its ID and token.
func (e *testEnv) startSession(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	rr := doRequest(t, e.router, "POST", "/sessions", map[string]string{"table_no": "7"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionID uuid.UUID `json:"session_id"`
		Token     string    `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp.SessionID, resp.Token
}

// --- Helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doAuthRequest(t, router, method, path, "", body)
}

func doAuthRequest(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

var errVendorDown = fmt.Errorf("%w: status 500, message: upstream down", checkout.ErrSubmission)
