package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core/admission"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/student"
	"github.com/trezcool/ada/core/user"
	testutil "github.com/trezcool/ada/tests"
)

func Test_admissionApi_create(t *testing.T) {
	app := setup(t)
	_, token := app.userWithToken(t, user.RoleAdmin)

	body := []byte(`{
		"studentName": "Ravi Kumar",
		"dob": "2015-05-20",
		"gender": "Male",
		"phone": "9876543210",
		"address": "12 MG Road",
		"city": "Kochi",
		"admissionDate": "2025-06-15",
		"grade": "Grade 1",
		"transportType": "3-5 km"
	}`)

	rec := app.do(http.MethodPost, "/v1/admissions", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "settings are required")

	testutil.SaveSettings(t, app.Schools)
	rec = app.do(http.MethodPost, "/v1/admissions", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res admission.Result
	unmarshal(t, rec, &res)
	assert.Equal(t, "Ravi Kumar", res.Student.Name)
	assert.Equal(t, "12 MG Road, Kochi", res.Student.Address)
	assert.Equal(t, "Grade 1", res.Admission.ClassEnrolled)
	assert.Equal(t, "3-5KM", res.Admission.TransportType)
	require.Len(t, res.MonthlyFees, 10)
	assert.Equal(t, "1200", res.MonthlyFees[0].TotalAmount.String())
	assert.Equal(t, "800", res.MonthlyFees[9].TotalAmount.String())

	tests := []httpTest{
		{name: "unknown class", method: http.MethodPost, path: "/v1/admissions", token: token, wantCode: http.StatusBadRequest,
			body: []byte(`{"studentName":"A","dob":"2015-05-20","gender":"F","phone":"1","address":"x","admissionDate":"2025-06-15","grade":"Grade 9"}`)},
		{name: "unknown transport", method: http.MethodPost, path: "/v1/admissions", token: token, wantCode: http.StatusBadRequest,
			body: []byte(`{"studentName":"A","dob":"2015-05-20","gender":"F","phone":"1","address":"x","admissionDate":"2025-06-15","grade":"Grade 1","transportType":"Boat"}`)},
		{name: "bad date", method: http.MethodPost, path: "/v1/admissions", token: token, wantCode: http.StatusBadRequest,
			body: []byte(`{"studentName":"A","dob":"2015-05-20","gender":"F","phone":"1","address":"x","admissionDate":"15/06/2025","grade":"Grade 1"}`)},
	}
	runHTTPTests(t, app, tests)
}

func Test_studentApi(t *testing.T) {
	app := setup(t)
	testutil.SaveSettings(t, app.Schools)
	_, token := app.userWithToken(t, user.RoleAdmin)
	_, accountantToken := app.userWithToken(t, user.RoleAccountant)

	ravi := testutil.Admit(t, app.Admissions, "Ravi Kumar", "Grade 1", "2025-06-15", "").Student
	asha := testutil.CreateStudent(t, app.StudentRepo, "Asha", false)
	path := fmt.Sprintf("/v1/students/%d", ravi.ID)

	t.Run("query", func(t *testing.T) {
		var stds []student.Student
		rec := app.do(http.MethodGet, "/v1/students", token)
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &stds)
		require.Len(t, stds, 1)
		assert.Equal(t, ravi.ID, stds[0].ID)
		require.NotNil(t, stds[0].Admission)

		rec = app.do(http.MethodGet, "/v1/students?includeInactive=true", token)
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &stds)
		assert.Len(t, stds, 2)
	})

	tests := []httpTest{
		{name: "get: invalid id", path: "/v1/students/abc", token: token, wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid ID"})},
		{name: "get: not found", path: "/v1/students/9999", token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: student.ErrNotFound.Error()})},
		{name: "get", path: path, token: token, wantCode: http.StatusOK},
		{name: "update: blank name", method: http.MethodPut, path: path, token: token, body: []byte(`{"studentName":"  "}`), wantCode: http.StatusBadRequest},
		{name: "update", method: http.MethodPut, path: path, token: token, body: []byte(`{"fatherName":"Suresh Kumar"}`), wantCode: http.StatusOK},
		{name: "set active: missing flag", method: http.MethodPatch, path: path, token: token, body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "set active", method: http.MethodPatch, path: fmt.Sprintf("/v1/students/%d", asha.ID), token: token, body: []byte(`{"isActive":true}`), wantCode: http.StatusOK},
		{name: "fee summary: admin", path: path + "/fee-summary", token: token, wantCode: http.StatusForbidden},
		{name: "fee summary: not found", path: "/v1/students/9999/fee-summary", token: accountantToken, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, app, tests)

	got, err := app.Students.Get(context.Background(), ravi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Suresh Kumar", got.FatherName)
	assert.Equal(t, "Ravi Kumar", got.Name)

	t.Run("fee summary", func(t *testing.T) {
		rec := app.do(http.MethodGet, path+"/fee-summary", accountantToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var sum fee.Summary
		unmarshal(t, rec, &sum)
		assert.Equal(t, ravi.ID, sum.Student.ID)
		assert.Len(t, sum.MonthlyFees, 10)
		assert.Equal(t, "6400", sum.TotalAmount.String())
		assert.Equal(t, "6400", sum.PendingAmount.String())
		assert.Equal(t, 10, sum.PendingMonths)
	})
}
