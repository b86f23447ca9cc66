// Package apitest runs an in-memory Bullion admin API for command tests.
package apitest

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Token is always accepted as a bearer token.
const Token = "test-token"

// Route names, usable with Hits.
const (
	RouteLogin      = "login"
	RouteRegister   = "register"
	RouteListUsers  = "listUsers"
	RouteUserDetail = "userDetail"
	RouteUpdateUser = "updateUser"
)

// User is the stored form of an admin account.
type User struct {
	ID          string `json:"_id"`
	Name        string `json:"name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Photo       string `json:"photo,omitempty"`
	Address     string `json:"address,omitempty"`

	password string
}

// Server is a fake Bullion API backed by a gorilla/mux router.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	users  []*User
	tokens map[string]string
	hits   map[string]int
}

// New starts a server. Close it when done.
func New() *Server {
	s := &Server{
		tokens: map[string]string{Token: ""},
		hits:   map[string]int{},
	}
	s.Server = httptest.NewServer(s.Router())
	return s
}

// Router returns the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.count)

	r.HandleFunc("/api/v1/auth/login", s.login).Methods(http.MethodPost).Name(RouteLogin)
	r.HandleFunc("/api/v1/auth/register", s.register).Methods(http.MethodPost).Name(RouteRegister)

	admin := r.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(s.requireToken)
	admin.HandleFunc("", s.listUsers).Methods(http.MethodGet).Name(RouteListUsers)
	admin.HandleFunc("/{id}", s.getUser).Methods(http.MethodGet).Name(RouteUserDetail)
	admin.HandleFunc("/{id}", s.updateUser).Methods(http.MethodPut).Name(RouteUpdateUser)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	return r
}

// AddUser stores u with password and returns its generated ID.
func (s *Server) AddUser(u User, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = newID()
	u.password = password
	s.users = append(s.users, &u)
	return u.ID
}

// Hits returns how many requests matched the named route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			s.mu.Lock()
			s.hits[route.GetName()]++
			s.mu.Unlock()
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByEmail(req.Email)
	if u == nil || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token := "tok-" + newID()
	s.tokens[token] = u.ID
	writeData(w, http.StatusCreated, "Login success", map[string]string{
		"token": token,
		"name":  u.Name,
		"email": u.Email,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	form, ok := readForm(w, r)
	if !ok {
		return
	}
	if form.Email == "" || form.password == "" {
		writeError(w, http.StatusUnprocessableEntity, "Email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(form.Email) != nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	form.ID = newID()
	s.users = append(s.users, form)
	writeData(w, http.StatusCreated, "Register success", form)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	offset, errOffset := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, errLimit := strconv.Atoi(r.URL.Query().Get("limit"))
	if errOffset != nil || errLimit != nil || offset < 0 || limit < 0 {
		writeError(w, http.StatusBadRequest, "offset and limit must be non-negative integers")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page := []*User{}
	for i := offset; i < len(s.users) && i < offset+limit; i++ {
		page = append(page, s.users[i])
	}
	writeData(w, http.StatusOK, "Success", page)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByID(mux.Vars(r)["id"])
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeData(w, http.StatusOK, "Success", u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	form, ok := readForm(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByID(mux.Vars(r)["id"])
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	merge(&u.Name, form.Name)
	merge(&u.Gender, form.Gender)
	merge(&u.DateOfBirth, form.DateOfBirth)
	merge(&u.Email, form.Email)
	merge(&u.Phone, form.Phone)
	merge(&u.Address, form.Address)
	merge(&u.Photo, form.Photo)
	merge(&u.password, form.password)
	writeData(w, http.StatusOK, "Update success", u)
}

func (s *Server) findByEmail(email string) *User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *Server) findByID(id string) *User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Users returns a snapshot of stored users ordered by email.
func (s *Server) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func readForm(w http.ResponseWriter, r *http.Request) (*User, bool) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form data")
		return nil, false
	}
	u := &User{
		Name:        r.FormValue("name"),
		Gender:      r.FormValue("gender"),
		DateOfBirth: r.FormValue("date_of_birth"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Address:     r.FormValue("address"),
		password:    r.FormValue("password"),
	}
	if file, header, err := r.FormFile("photo"); err == nil {
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unreadable photo")
			return nil, false
		}
		u.Photo = "data:" + header.Header.Get("Content-Type") + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return u, true
}

func merge(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, map[string]any{
		"status":  status,
		"iserror": false,
		"message": message,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":         status,
		"iserror":        true,
		"err_message_en": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
