// Package buggyapp is an in-process stand-in for the application under test.
//
// It serves the login, registration and profile pages with the same labels,
// links and messages the page objects expect, so the browser suite can run
// without network access. Pages talk to a small JSON API from script and show
// the spinner while a call is in flight.
package buggyapp

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/errs"
	"github.com/kuitang/buggy-e2e/internal/logutil"
	"github.com/kuitang/buggy-e2e/internal/obs"
	"github.com/kuitang/buggy-e2e/internal/pages"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	SessionCookieName = "session_id"

	maxBodyBytes    = 64 << 10
	maxLoggedBytes  = 2048
	defaultLanguage = "English"
)

// Options configures a Server.
type Options struct {
	Users       config.Users
	LoaderDelay time.Duration
	BcryptCost  int
	Limiter     LimiterConfig
}

// OptionsFromConfig seeds the configured accounts and loader delay.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Users:       cfg.Users,
		LoaderDelay: cfg.StandInLoaderDelay,
		Limiter:     DefaultLimiterConfig,
	}
}

// Server is the stand-in application.
type Server struct {
	opts     Options
	store    *Store
	limiter  *LoginLimiter
	renderer *renderer
	log      *slog.Logger
}

// New creates a server with the configured accounts already registered.
func New(opts Options) (*Server, error) {
	if opts.Limiter.RPS <= 0 {
		opts.Limiter = DefaultLimiterConfig
	}
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		opts:     opts,
		store:    NewStore(opts.BcryptCost),
		limiter:  NewLoginLimiter(opts.Limiter),
		renderer: r,
		log:      obs.Pkg("buggyapp"),
	}
	for _, c := range []config.Credentials{opts.Users.Primary, opts.Users.Secondary} {
		if c.Username == "" {
			continue
		}
		if err := s.store.AddUser(c.Username, c.Password, Profile{FirstName: c.Username, Language: defaultLanguage}); err != nil {
			s.Close()
			return nil, fmt.Errorf("seed user %s: %w", c.Username, err)
		}
	}
	return s, nil
}

// Store exposes the user store, mainly for tests.
func (s *Server) Store() *Store {
	return s.store
}

// Close stops background work.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler returns the routed handler wrapped in the request middlewares.
func (s *Server) Handler() http.Handler {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("GET /profile", s.handleProfilePage)
	mux.Handle("GET /img/", http.FileServerFS(static))
	mux.Handle("GET /js/", http.FileServerFS(static))

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handlePutProfile)

	return obs.RequestContextMiddleware(obs.AccessLogMiddleware("buggyapp", mux))
}

// pageData is passed to every template.
type pageData struct {
	Title     string
	Username  string
	Greeting  string
	Hobbies   []string
	Languages []string
}

func (s *Server) page(r *http.Request, title string) pageData {
	data := pageData{Title: title, Hobbies: HobbyOptions(), Languages: Languages}
	if username, ok := s.currentUser(r); ok {
		data.Username = username
		data.Greeting = username
		if p, ok := s.store.Profile(username); ok && p.FirstName != "" {
			data.Greeting = p.FirstName
		}
	}
	return data
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home.html", s.page(r, "Buggy Cars Rating"))
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", s.page(r, "Register"))
}

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Profile")
	if data.Username == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, r, "profile.html", data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if err := s.renderer.Render(w, name, data); err != nil {
		obs.From(r.Context()).Error("render_failed", "pkg", "buggyapp", "template", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.delay(r.Context())
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !s.limiter.Allow(req.Username) {
		w.Header().Set("Retry-After", "1")
		writeError(w, errs.New(errs.RateLimited, MsgTooManyAttempts))
		return
	}
	if !s.store.CheckPassword(req.Username, req.Password) {
		obs.From(r.Context()).Info("login_failed", "pkg", "buggyapp", "username", req.Username)
		writeError(w, errs.New(errs.Unauthenticated, pages.MsgInvalidLogin))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.store.NewSession(req.Username),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	obs.From(r.Context()).Info("login_succeeded", "pkg", "buggyapp", "username", req.Username)
	writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.delay(r.Context())
	if c, err := r.Cookie(SessionCookieName); err == nil {
		s.store.EndSession(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.delay(r.Context())
	var req RegisterRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ValidateRegister(req); err != nil {
		writeError(w, err)
		return
	}
	profile := Profile{FirstName: req.FirstName, LastName: req.LastName, Language: defaultLanguage}
	if err := s.store.AddUser(req.Username, req.Password, profile); err != nil {
		writeError(w, err)
		return
	}
	obs.From(r.Context()).Info("user_registered", "pkg", "buggyapp", "username", req.Username)
	writeJSON(w, http.StatusOK, messageResponse{Message: pages.MsgRegistered})
}

type profileResponse struct {
	Username string `json:"username"`
	Profile
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.delay(r.Context())
	username, ok := s.currentUser(r)
	if !ok {
		writeError(w, errs.New(errs.Unauthenticated, MsgLoginRequired))
		return
	}
	p, _ := s.store.Profile(username)
	writeJSON(w, http.StatusOK, profileResponse{Username: username, Profile: p})
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	s.delay(r.Context())
	username, ok := s.currentUser(r)
	if !ok {
		writeError(w, errs.New(errs.Unauthenticated, MsgLoginRequired))
		return
	}
	var req ProfileRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ValidateProfile(req.Profile); err != nil {
		writeError(w, err)
		return
	}
	if req.WantsPasswordChange() {
		err := ValidatePasswordChange(req, func(pw string) bool {
			return s.store.CheckPassword(username, pw)
		})
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.store.SetPassword(username, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		obs.From(r.Context()).Info("password_changed", "pkg", "buggyapp", "username", username)
	}
	if err := s.store.SetProfile(username, req.Profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: pages.MsgProfileSaved})
}

func (s *Server) currentUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return s.store.SessionUser(c.Value)
}

// delay holds an API call so the page's spinner stays up for a while.
func (s *Server) delay(ctx context.Context) {
	if s.opts.LoaderDelay <= 0 {
		return
	}
	t := time.NewTimer(s.opts.LoaderDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// decode reads a JSON body into v. Malformed bodies surface as Unknown error,
// which is what the pages show for anything they cannot classify.
func (s *Server) decode(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, pages.MsgUnknownError, err)
	}
	if len(body) > maxBodyBytes {
		return errs.New(errs.InvalidArgument, pages.MsgUnknownError)
	}
	obs.From(r.Context()).Debug("api_request",
		"pkg", "buggyapp",
		"path", r.URL.Path,
		"body", logutil.FormatBodyForLog(r.Header.Get("Content-Type"), body, maxLoggedBytes, false),
	)
	if err := json.Unmarshal(body, v); err != nil {
		return errs.Wrap(errs.InvalidArgument, pages.MsgUnknownError, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	var coded *errs.Error
	if !errors.As(err, &coded) {
		err = errs.Wrap(errs.Internal, pages.MsgUnknownError, err)
	}
	writeJSON(w, errs.HTTPStatus(errs.CodeOf(err)), messageResponse{Message: errs.MessageOf(err)})
}
