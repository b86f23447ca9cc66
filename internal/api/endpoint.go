package api

import (
	"fmt"
	"net/http"
	"strconv"
)

type endpointKind int

const (
	kindLogin endpointKind = iota + 1
	kindRegister
	kindListUsers
	kindUserDetail
	kindUpdateUser
)

// Endpoint identifies one Bullion API operation. The zero value is not a
// valid endpoint; use the constructors below.
type Endpoint struct {
	kind   endpointKind
	offset int
	limit  int
	id     string
}

// Login is POST /api/v1/auth/login.
func Login() Endpoint { return Endpoint{kind: kindLogin} }

// Register is POST /api/v1/auth/register.
func Register() Endpoint { return Endpoint{kind: kindRegister} }

// ListUsers is GET /api/v1/admin with offset and limit query parameters.
func ListUsers(offset, limit int) Endpoint {
	return Endpoint{kind: kindListUsers, offset: offset, limit: limit}
}

// UserDetail is GET /api/v1/admin/{id}.
func UserDetail(id string) Endpoint { return Endpoint{kind: kindUserDetail, id: id} }

// UpdateUser is PUT /api/v1/admin/{id}.
func UpdateUser(id string) Endpoint { return Endpoint{kind: kindUpdateUser, id: id} }

// Method returns the HTTP method of the endpoint.
func (e Endpoint) Method() string {
	switch e.kind {
	case kindLogin, kindRegister:
		return http.MethodPost
	case kindUpdateUser:
		return http.MethodPut
	default:
		return http.MethodGet
	}
}

// Path returns the path and query relative to the base URL. Values are
// substituted literally; the server owns their validation.
func (e Endpoint) Path() string {
	switch e.kind {
	case kindLogin:
		return "/api/v1/auth/login"
	case kindRegister:
		return "/api/v1/auth/register"
	case kindListUsers:
		return "/api/v1/admin?offset=" + strconv.Itoa(e.offset) + "&limit=" + strconv.Itoa(e.limit)
	case kindUserDetail, kindUpdateUser:
		return "/api/v1/admin/" + e.id
	default:
		return ""
	}
}

// ExpectsBody reports whether requests to the endpoint carry a body.
func (e Endpoint) ExpectsBody() bool {
	switch e.kind {
	case kindLogin, kindRegister, kindUpdateUser:
		return true
	default:
		return false
	}
}

// Resolve joins baseURL and the endpoint path. It is pure: identical inputs
// produce byte-identical URLs.
func (e Endpoint) Resolve(baseURL string) (method, url string) {
	return e.Method(), baseURL + e.Path()
}

func (e Endpoint) String() string {
	switch e.kind {
	case kindLogin:
		return "login"
	case kindRegister:
		return "register"
	case kindListUsers:
		return fmt.Sprintf("listUsers(offset=%d, limit=%d)", e.offset, e.limit)
	case kindUserDetail:
		return fmt.Sprintf("userDetail(%s)", e.id)
	case kindUpdateUser:
		return fmt.Sprintf("updateUser(%s)", e.id)
	default:
		return "invalid"
	}
}
