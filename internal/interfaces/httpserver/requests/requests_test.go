package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequestValidation(t *testing.T) {
	validate := NewValidator()

	assert.NoError(t, validate.Struct(RegisterRequest{Username: "wave_rider", Password: "secret1"}))

	err := validate.Struct(RegisterRequest{Username: "no spaces", Password: "secret1"})
	require.Error(t, err)
	assert.Contains(t, ValidationMessage(err), "username must be 3-32 characters")

	err = validate.Struct(RegisterRequest{Username: "wave_rider", Password: "123"})
	require.Error(t, err)
	assert.Equal(t, "password must be at least 6 characters", ValidationMessage(err))

	err = validate.Struct(RegisterRequest{})
	require.Error(t, err)
	assert.Contains(t, ValidationMessage(err), "username is required")
	assert.Contains(t, ValidationMessage(err), "password is required")
}

func TestSearchQueryValidation(t *testing.T) {
	validate := NewValidator()

	assert.Error(t, validate.Struct(SearchQuery{}))
	assert.NoError(t, validate.Struct(SearchQuery{Q: "golang"}))
}

func TestAskRequestNormalize(t *testing.T) {
	req := AskRequest{Question: "  what is go?  "}
	req.Normalize()
	assert.Equal(t, "what is go?", req.Question)

	blank := AskRequest{Question: "   "}
	blank.Normalize()
	assert.Error(t, NewValidator().Struct(blank))
}

func TestSettingsKeysMustBeNonEmpty(t *testing.T) {
	value := "dark"
	validate := NewValidator()

	assert.NoError(t, validate.Struct(UpdateSettingsRequest{Settings: map[string]*string{"theme": &value}}))
	assert.Error(t, validate.Struct(UpdateSettingsRequest{Settings: map[string]*string{"": &value}}))
}
