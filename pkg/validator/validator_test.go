package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type createTenantInput struct {
	Slug string `json:"slug" validate:"required,min=3"`
	Plan string `json:"plan" validate:"oneof=FREE BASIC PRO ENTERPRISE"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(createTenantInput{Slug: "ab", Plan: "GOLD"})
	require.Error(t, err)

	failures, ok := err.(FieldErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)
	require.Equal(t, "slug", failures[0].Field)
	require.Equal(t, "min", failures[0].Tag)
	require.Equal(t, "plan", failures[1].Field)
	require.Contains(t, err.Error(), "slug failed on min=3")
}

func TestValidateStructPassesValidInput(t *testing.T) {
	require.NoError(t, ValidateStruct(createTenantInput{Slug: "acme", Plan: "PRO"}))
}
