package handler_test

import (
	"net/http"
	"testing"

	"github.com/biztalbox/avaya-food-ordering/internal/auth"
	"github.com/google/uuid"
)

func TestSessionCreate_IssuesToken(t *testing.T) {
	env := newTestEnv(t, staticMenu(testMenu()))

	rr := doRequest(t, env.router, "POST", "/sessions", map[string]string{"table_no": "7"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeMap(t, rr)

	id, err := uuid.Parse(resp["session_id"].(string))
	if err != nil {
		t.Fatalf("session_id: %v", err)
	}
	claims, err := auth.ValidateToken(testSecret, resp["token"].(string))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if claims.SessionID != id {
		t.Errorf("token session: got %s, want %s", claims.SessionID, id)
	}
	if claims.TableNumber != "7" {
		t.Errorf("token table: got %q, want 7", claims.TableNumber)
	}
	if env.sessions.Len() != 1 {
		t.Errorf("sessions: got %d, want 1", env.sessions.Len())
	}
}

func TestSessionCreate_LocationNeedsTable(t *testing.T) {
	env := newTestEnv(t, staticMenu(testMenu()))

	rr := doRequest(t, env.router, "POST", "/sessions", map[string]string{"location": testLocation})
	if rr.Code != http.StatusPreconditionRequired {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusPreconditionRequired)
	}
	if env.sessions.Len() != 0 {
		t.Errorf("no session should be created")
	}
}

func TestSessionCreate_UnknownLocation(t *testing.T) {
	env := newTestEnv(t, staticMenu(testMenu()))

	rr := doRequest(t, env.router, "POST", "/sessions", map[string]string{"location": "nowhere", "table_no": "3"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSessionCreate_MenuUnavailable(t *testing.T) {
	env := newTestEnv(t, failingMenu())

	rr := doRequest(t, env.router, "POST", "/sessions", map[string]string{"table_no": "7"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestSessionCreate_InvalidBody(t *testing.T) {
	env := newTestEnv(t, staticMenu(testMenu()))

	rr := doRequest(t, env.router, "POST", "/sessions", "not an object")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSessionCurrent(t *testing.T) {
	env := newTestEnv(t, staticMenu(testMenu()))
	id, token := env.startSession(t)

	rr := doAuthRequest(t, env.router, "GET", "/sessions/current", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	if resp["session_id"] != id.String() {
		t.Errorf("session_id: got %v, want %s", resp["session_id"], id)
	}
	if st := resp["checkout"].(map[string]interface{}); st["state"] != "IDLE" {
		t.Errorf("checkout state: got %v, want IDLE", st["state"])
	}
}

func TestSessionCurrent_RequiresToken(t *testing.T) {
	env := newTestEnv(t, staticMenu(testMenu()))

	rr := doRequest(t, env.router, "GET", "/sessions/current", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSessionEnd(t *testing.T) {
	env := newTestEnv(t, staticMenu(testMenu()))
	id, token := env.startSession(t)

	rr := doAuthRequest(t, env.router, "DELETE", "/sessions/current", token, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if len(env.notifier.closed) != 1 || env.notifier.closed[0] != id {
		t.Errorf("closed rooms: got %v, want [%s]", env.notifier.closed, id)
	}

	// The token outlives the session.
	rr = doAuthRequest(t, env.router, "GET", "/cart", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("after end: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	rr = doAuthRequest(t, env.router, "DELETE", "/sessions/current", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second end: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
