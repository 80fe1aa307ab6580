package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ada/core/school"
	testutil "github.com/trezcool/ada/tests"
)

func TestNormalizeTransportTier(t *testing.T) {
	tests := []struct {
		label   string
		want    school.TransportTier
		wantErr error
	}{
		{label: "", want: school.TierNone},
		{label: "None", want: school.TierNone},
		{label: "below 3 km", want: school.TierBelow3},
		{label: "Below 3KM", want: school.TierBelow3},
		{label: "3-5 km", want: school.Tier3To5},
		{label: " 5-10KM ", want: school.Tier5To10},
		{label: "ABOVE 10 KM", want: school.TierAbove10},
		{label: "Bicycle", wantErr: school.ErrUnknownTransportTier},
		{label: "3-5 miles", wantErr: school.ErrUnknownTransportTier},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := school.NormalizeTransportTier(tt.label)
			if err != tt.wantErr {
				t.Fatalf("NormalizeTransportTier() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeTransportTier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSettings_fees(t *testing.T) {
	s := testutil.DefaultSettings()

	cls, err := s.ClassFee(" Grade 1 ")
	require.NoError(t, err)
	assert.Equal(t, "600", cls.TuitionFee.String())
	assert.Equal(t, "400", cls.AdmissionFee.String())

	_, err = s.ClassFee("grade 1")
	assert.Equal(t, school.ErrClassNotFound, err)

	tests := []struct {
		label string
		want  string
	}{
		{"", "0"},
		{"None", "0"},
		{"Below 3 km", "100"},
		{"3-5 km", "200"},
		{"5-10 km", "300"},
		{"Above 10 km", "400"},
	}
	for _, tt := range tests {
		fee, err := s.TransportFee(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.want, fee.String(), tt.label)
	}
	_, err = s.TransportFee("by boat")
	assert.Equal(t, school.ErrUnknownTransportTier, err)
}

func TestService_Save(t *testing.T) {
	env := testutil.NewEnv()
	ctx := context.Background()

	_, err := env.Schools.Get(ctx)
	assert.Equal(t, school.ErrSettingsNotFound, err)

	created := testutil.SaveSettings(t, env.Schools)
	assert.NotZero(t, created.ID)
	require.Len(t, created.Classes, 2)
	assert.False(t, created.CreatedAt.IsZero())

	// saving again under the same school id updates and replaces the classes
	s := testutil.DefaultSettings()
	s.SchoolName = "  Green Valley Public School "
	s.Classes = []school.Class{{Name: "Nursery", TuitionFee: testutil.Dec("450.50")}}
	updated, err := env.Schools.Save(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Green Valley Public School", updated.SchoolName)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	got, err := env.Schools.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got.Classes, 1)
	assert.Equal(t, "Nursery", got.Classes[0].Name)
	assert.Equal(t, "450.5", got.Classes[0].TuitionFee.String())
}

func TestService_Save_invalid(t *testing.T) {
	env := testutil.NewEnv()
	ctx := context.Background()

	tests := []struct {
		name string
		mod  func(s *school.Settings)
	}{
		{name: "missing school id", mod: func(s *school.Settings) { s.SchoolID = " " }},
		{name: "missing school name", mod: func(s *school.Settings) { s.SchoolName = "" }},
		{name: "bad admin email", mod: func(s *school.Settings) { s.AdminEmail = "meera" }},
		{name: "negative tuition", mod: func(s *school.Settings) { s.Classes[0].TuitionFee = testutil.Dec("-1") }},
		{name: "negative transport", mod: func(s *school.Settings) { s.TransportFees.Above10 = testutil.Dec("-0.5") }},
		{name: "unnamed class", mod: func(s *school.Settings) { s.Classes[1].Name = "" }},
		{name: "duplicate class", mod: func(s *school.Settings) { s.Classes[1].Name = s.Classes[0].Name }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.DefaultSettings()
			tt.mod(&s)
			_, err := env.Schools.Save(ctx, s)
			assert.Error(t, err)
		})
	}

	_, err := env.Schools.Get(ctx)
	assert.Equal(t, school.ErrSettingsNotFound, err)
}

func TestService_FeeStructure(t *testing.T) {
	env := testutil.NewEnv()
	ctx := context.Background()

	_, err := env.Schools.FeeStructure(ctx)
	assert.Equal(t, school.ErrSettingsNotFound, err)

	testutil.SaveSettings(t, env.Schools)
	fs, err := env.Schools.FeeStructure(ctx)
	require.NoError(t, err)
	require.Len(t, fs.Classes, 2)
	assert.Equal(t, "Grade 1", fs.Classes[0].Name)
	assert.Equal(t, "Grade 2", fs.Classes[1].Name)
	assert.Equal(t, "300", fs.TransportFees.Between5And10.String())
}
