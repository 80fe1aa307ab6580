package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/user"
	testutil "github.com/trezcool/ada/tests"
)

func Test_schoolApi_schoolData(t *testing.T) {
	app := setup(t)
	_, token := app.userWithToken(t, user.RoleTeacher)

	t.Run("no settings", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/dashboard/school-data", token)
		require.Equal(t, http.StatusOK, rec.Code)

		var data map[string]interface{}
		unmarshal(t, rec, &data)
		assert.Equal(t, "User TEACHER", data["userName"])
		assert.Equal(t, "TEACHER", data["userRole"])
		assert.Nil(t, data["schoolName"])
		assert.Equal(t, []interface{}{}, data["classes"])
	})

	testutil.SaveSettings(t, app.Schools)

	t.Run("with settings", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/dashboard/school-data", token)
		require.Equal(t, http.StatusOK, rec.Code)

		var data SchoolDataResponse
		unmarshal(t, rec, &data)
		require.NotNil(t, data.SchoolName)
		assert.Equal(t, "Green Valley School", *data.SchoolName)
		assert.Equal(t, "sch-001", *data.SchoolID)
		assert.Len(t, data.Classes, 2)
		assert.Equal(t, "200", data.TransportFees.Between3And5.String())
		assert.Contains(t, rec.Body.String(), `"between3and5":200`)
	})
}

func Test_schoolApi_feeStructure(t *testing.T) {
	app := setup(t)
	_, token := app.userWithToken(t, user.RoleAccountant)

	rec := app.do(http.MethodGet, "/v1/school-fees", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	testutil.SaveSettings(t, app.Schools)
	rec = app.do(http.MethodGet, "/v1/school-fees", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var fs school.FeeStructure
	unmarshal(t, rec, &fs)
	require.Len(t, fs.Classes, 2)
	assert.Equal(t, "Grade 1", fs.Classes[0].Name)
	assert.Equal(t, "600", fs.Classes[0].TuitionFee.String())
}

func Test_schoolApi_settings(t *testing.T) {
	app := setup(t)
	_, token := app.userWithToken(t, user.RoleSuperAdmin)

	tests := []httpTest{
		{
			name:     "not configured",
			path:     "/v1/settings",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: school.ErrSettingsNotFound.Error()}),
		},
		{
			name:     "invalid",
			method:   http.MethodPost,
			path:     "/v1/settings",
			token:    token,
			body:     []byte(`{"schoolName":"Green Valley School","classes":[{"name":"Grade 1","tuitionFee":-5}]}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "save",
			method: http.MethodPost,
			path:   "/v1/settings",
			token:  token,
			body: []byte(`{
				"schoolId": "sch-001",
				"schoolName": "Green Valley School",
				"logoBase64": "aGVsbG8=",
				"transportFees": {"below3": 100, "between3and5": "200.50", "between5and10": 300, "above10": 400},
				"classes": [{"name": "Grade 1", "tuitionFee": 600, "admissionFee": 400}]
			}`),
			wantCode: http.StatusOK,
		},
	}
	runHTTPTests(t, app, tests)

	rec := app.do(http.MethodGet, "/v1/settings", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var s school.Settings
	unmarshal(t, rec, &s)
	assert.Equal(t, "aGVsbG8=", s.Logo)
	assert.Equal(t, "200.5", s.TransportFees.Between3And5.String())
	require.Len(t, s.Classes, 1)
	assert.Equal(t, "400", s.Classes[0].AdmissionFee.String())
}
