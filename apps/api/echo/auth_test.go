package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core/user"
	testutil "github.com/trezcool/ada/tests"
)

func Test_home(t *testing.T) {
	app := setup(t)
	rec := app.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Ada API!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func Test_authApi_login(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.UserRepo, "Kiran Rao", "kiran@school.test", "Accounts#2025", user.RoleAccountant)

	tests := []httpTest{
		{name: "invalid input", body: []byte(`{"email":"kiran","password":"123"}`), wantCode: http.StatusBadRequest},
		{
			name:     "wrong password",
			body:     []byte(`{"email":"kiran@school.test","password":"wrong-pass"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email":"ghost@school.test","password":"Accounts#2025"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/auth/login"
	}
	runHTTPTests(t, app, tests)

	t.Run("valid", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/auth/login", "", []byte(`{"email":" KIRAN@school.test ","password":"Accounts#2025"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, usr.ID, resp.User.ID)
		assert.Equal(t, user.RoleAccountant, resp.User.Role)
		assert.NotContains(t, rec.Body.String(), "password")

		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
		require.NoError(t, err)
		id, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, usr.ID, id)
		assert.Equal(t, "kiran@school.test", claims.Email)
		assert.Equal(t, user.RoleAccountant, claims.Role)

		// the token is usable
		me := app.do(http.MethodGet, "/v1/auth/me", resp.Token)
		assert.Equal(t, http.StatusOK, me.Code)
	})
}

func Test_authApi_register(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.UserRepo, "Super Admin", "super@school.test", "s3cret-Pass", user.RoleSuperAdmin)
	testutil.CreateUser(t, app.UserRepo, "Admin", "admin@school.test", "s3cret-Pass", user.RoleAdmin)

	body := func(email, role, adminEmail, adminPwd string) []byte {
		return marchallObj(t, user.NewUser{
			Name:          "Lakshmi Iyer",
			Email:         email,
			Password:      "Teach!ng2025",
			Role:          user.Role(role),
			AdminEmail:    adminEmail,
			AdminPassword: adminPwd,
		})
	}

	tests := []httpTest{
		{name: "invalid role", body: body("lakshmi@school.test", "JANITOR", "super@school.test", "s3cret-Pass"), wantCode: http.StatusBadRequest},
		{
			name:     "not a super admin",
			body:     body("lakshmi@school.test", "TEACHER", "admin@school.test", "s3cret-Pass"),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: user.ErrNotSuperAdmin.Error()}),
		},
		{
			name:     "wrong admin password",
			body:     body("lakshmi@school.test", "TEACHER", "super@school.test", "nope-nope"),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: user.ErrBadAdminPassword.Error()}),
		},
		{name: "valid", body: body("lakshmi@school.test", "TEACHER", "super@school.test", "s3cret-Pass"), wantCode: http.StatusCreated},
		{
			name:     "email taken",
			body:     body("lakshmi@school.test", "TEACHER", "super@school.test", "s3cret-Pass"),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: user.ErrEmailExists.Error()}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/auth/register"
	}
	runHTTPTests(t, app, tests)
}

func Test_authApi_me(t *testing.T) {
	app := setup(t)
	usr, token := app.userWithToken(t, user.RoleTeacher)

	expired := func() string {
		nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		defer func() { nowFunc = time.Now }()
		tok, err := app.srv.auth.token(usr)
		require.NoError(t, err)
		return tok
	}()

	ghost := user.User{ID: 4242, Name: "Ghost", Email: "ghost@school.test", Role: user.RoleSuperAdmin}
	ghostToken, err := app.srv.auth.token(ghost)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "auth required", path: "/v1/auth/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "expired token", path: "/v1/auth/me", token: expired, wantCode: http.StatusUnauthorized},
		{name: "unknown user", path: "/v1/auth/me", token: ghostToken, wantCode: http.StatusUnauthorized},
		{
			name:     "valid",
			path:     "/v1/auth/me",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, MeResponse{User: usr, Sections: user.Sections(user.RoleTeacher)}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_sectionMiddleware(t *testing.T) {
	app := setup(t)
	_, superToken := app.userWithToken(t, user.RoleSuperAdmin)
	_, adminToken := app.userWithToken(t, user.RoleAdmin)
	_, teacherToken := app.userWithToken(t, user.RoleTeacher)
	_, accountantToken := app.userWithToken(t, user.RoleAccountant)
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "expenses: super admin", path: "/v1/expenses", token: superToken, wantCode: http.StatusOK},
		{name: "settings: admin", path: "/v1/settings", token: adminToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "students: teacher", path: "/v1/students", token: teacherToken, wantCode: http.StatusOK},
		{name: "students: accountant", path: "/v1/students", token: accountantToken, wantCode: http.StatusOK},
		{name: "fees: accountant", path: "/v1/monthly-fees", token: accountantToken, wantCode: http.StatusOK},
		{name: "fees: teacher", path: "/v1/monthly-fees", token: teacherToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "fees: admin", path: "/v1/fee-management", token: adminToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "expenses: accountant", path: "/v1/expenses", token: accountantToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "admissions: teacher", method: http.MethodPost, path: "/v1/admissions", token: teacherToken, wantCode: http.StatusBadRequest},
		{name: "admissions: no token", method: http.MethodPost, path: "/v1/admissions", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	}
	runHTTPTests(t, app, tests)
}
