package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("s3cretpass"))
	assert.False(t, IsStrongPassword("short1"))
	assert.False(t, IsStrongPassword("onlyletters"))
	assert.False(t, IsStrongPassword("1234567890"))
}

func TestIsValidGraduationYear(t *testing.T) {
	assert.True(t, IsValidGraduationYear(1900, 2026))
	assert.True(t, IsValidGraduationYear(2036, 2026))
	assert.False(t, IsValidGraduationYear(1899, 2026))
	assert.False(t, IsValidGraduationYear(2037, 2026))
}

func TestEmailMatchesDomain(t *testing.T) {
	assert.True(t, EmailMatchesDomain("ada@uni.edu", "uni.edu"))
	assert.True(t, EmailMatchesDomain("ada@cs.uni.edu", "@UNI.edu"))
	assert.True(t, EmailMatchesDomain("ada@gmail.com", ""))
	assert.False(t, EmailMatchesDomain("ada@notuni.edu", "uni.edu"))
	assert.False(t, EmailMatchesDomain("invalid", "uni.edu"))
}

func TestRegisterCustomTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type body struct {
		Slug     string `json:"slug" validate:"slug"`
		Password string `json:"password" validate:"strongpassword"`
	}

	require.NoError(t, v.Struct(body{Slug: "state-university-2", Password: "abc12345"}))

	err := v.Struct(body{Slug: "Bad Slug", Password: "abc"})
	require.Error(t, err)

	var fields []string
	for _, fe := range err.(validator.ValidationErrors) {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"slug", "password"}, fields)
}
