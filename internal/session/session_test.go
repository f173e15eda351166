package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aparkhill/activity-enrollment-client/internal/client"
	"github.com/aparkhill/activity-enrollment-client/internal/model"
	"github.com/aparkhill/activity-enrollment-client/internal/notify"
)

// fakeAPI scripts the session-facing server calls.
type fakeAPI struct {
	meSession   model.Session
	meErr       error
	meCalls     int
	loginMsg    string
	loginErr    error
	registerMsg string
	registerErr error
	logoutErr   error
}

func (f *fakeAPI) Me(ctx context.Context) (model.Session, error) {
	f.meCalls++
	return f.meSession, f.meErr
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (string, error) {
	return f.loginMsg, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, username, password string) (string, error) {
	return f.registerMsg, f.registerErr
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	return f.logoutErr
}

func newManager(api API) (*Manager, *Store, *notify.Banner) {
	store := NewStore()
	banner := notify.New()
	return NewManager(api, store, banner), store, banner
}

func TestRefreshUpdatesStore(t *testing.T) {
	api := &fakeAPI{meSession: model.Session{Username: "teacher1"}}
	m, store, _ := newManager(api)

	var seen []model.Session
	store.OnChange(func(s model.Session) { seen = append(seen, s) })

	sess := m.Refresh(context.Background())
	if sess.Username != "teacher1" {
		t.Fatalf("Refresh = %+v", sess)
	}
	if store.Current().Username != "teacher1" {
		t.Fatalf("store = %+v", store.Current())
	}
	if len(seen) != 1 {
		t.Fatalf("identity indicator updated %d times, want 1", len(seen))
	}
}

func TestRefreshTransportFailureMeansAnonymous(t *testing.T) {
	api := &fakeAPI{meErr: errors.New("connection refused")}
	m, store, _ := newManager(api)

	store.Set(model.Session{Username: "stale"})

	sess := m.Refresh(context.Background())
	if sess.LoggedIn() {
		t.Fatalf("Refresh on transport failure = %+v, want anonymous", sess)
	}
	if store.Current().LoggedIn() {
		t.Fatal("stale cached identity survived a failed refresh")
	}
}

func TestLoginSuccessShowsMessageAndRefreshes(t *testing.T) {
	api := &fakeAPI{
		loginMsg:  "Logged in as teacher1",
		meSession: model.Session{Username: "teacher1"},
	}
	m, store, banner := newManager(api)

	m.Login(context.Background(), "teacher1", "pw")

	msg := banner.Current()
	if !msg.Visible || msg.Kind != model.KindSuccess || msg.Text != "Logged in as teacher1" {
		t.Fatalf("banner = %+v", msg)
	}
	if api.meCalls != 1 {
		t.Fatalf("identity re-queried %d times, want 1", api.meCalls)
	}
	if store.Current().Username != "teacher1" {
		t.Fatalf("store = %+v", store.Current())
	}
}

func TestLoginRejectionSurfacesServerDetail(t *testing.T) {
	api := &fakeAPI{loginErr: &client.APIError{
		Status: http.StatusUnauthorized,
		Detail: "Incorrect username or password",
	}}
	m, _, banner := newManager(api)

	m.Login(context.Background(), "teacher1", "wrong")

	msg := banner.Current()
	if msg.Kind != model.KindError || msg.Text != "Incorrect username or password" {
		t.Fatalf("banner = %+v", msg)
	}
	if api.meCalls != 0 {
		t.Fatal("identity re-queried after a rejected login")
	}
}

func TestLoginFallbackTexts(t *testing.T) {
	t.Run("rejection without detail", func(t *testing.T) {
		api := &fakeAPI{loginErr: &client.APIError{Status: http.StatusBadRequest}}
		m, _, banner := newManager(api)
		m.Login(context.Background(), "u", "p")
		if got := banner.Current().Text; got != "Login failed" {
			t.Fatalf("banner text = %q, want %q", got, "Login failed")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		api := &fakeAPI{loginErr: errors.New("dial tcp: connection refused")}
		m, _, banner := newManager(api)
		m.Login(context.Background(), "u", "p")
		if got := banner.Current().Text; got != "Login error." {
			t.Fatalf("banner text = %q, want %q", got, "Login error.")
		}
	})
}

func TestRegisterDoesNotEstablishSession(t *testing.T) {
	api := &fakeAPI{registerMsg: "Registration successful. Please log in."}
	m, store, banner := newManager(api)

	m.Register(context.Background(), "newuser", "pw")

	msg := banner.Current()
	if msg.Kind != model.KindSuccess || msg.Text != "Registration successful. Please log in." {
		t.Fatalf("banner = %+v", msg)
	}
	if api.meCalls != 0 {
		t.Fatal("registration triggered an identity refresh")
	}
	if store.Current().LoggedIn() {
		t.Fatalf("store = %+v, want anonymous", store.Current())
	}
}

func TestRegisterFailureFallback(t *testing.T) {
	api := &fakeAPI{registerErr: &client.APIError{Status: http.StatusBadRequest}}
	m, _, banner := newManager(api)
	m.Register(context.Background(), "u", "p")
	if got := banner.Current().Text; got != "Registration failed" {
		t.Fatalf("banner text = %q, want %q", got, "Registration failed")
	}
}

func TestLogout(t *testing.T) {
	t.Run("success clears identity", func(t *testing.T) {
		api := &fakeAPI{}
		m, store, banner := newManager(api)
		store.Set(model.Session{Username: "teacher1"})

		m.Logout(context.Background())

		if got := banner.Current().Text; got != "Logged out." {
			t.Fatalf("banner text = %q, want %q", got, "Logged out.")
		}
		if store.Current().LoggedIn() {
			t.Fatal("identity survived logout")
		}
	})

	t.Run("rejection keeps identity", func(t *testing.T) {
		api := &fakeAPI{logoutErr: &client.APIError{Status: http.StatusUnauthorized}}
		m, store, banner := newManager(api)
		store.Set(model.Session{Username: "teacher1"})

		m.Logout(context.Background())

		if got := banner.Current().Text; got != "Logout failed." {
			t.Fatalf("banner text = %q, want %q", got, "Logout failed.")
		}
		if !store.Current().LoggedIn() {
			t.Fatal("identity cleared on failed logout")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		api := &fakeAPI{logoutErr: errors.New("connection reset")}
		m, _, banner := newManager(api)
		m.Logout(context.Background())
		if got := banner.Current().Text; got != "Logout error." {
			t.Fatalf("banner text = %q, want %q", got, "Logout error.")
		}
	})
}
