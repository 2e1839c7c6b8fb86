package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type periodRequest struct {
	Title     string  `json:"title" validate:"required,max=10"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02,date_after=start_date"`
}

type currentPeriodRequest struct {
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02,date_after=start_date"`
	IsCurrent bool    `json:"is_current"`
}

type appearanceRequest struct {
	TemplateID    string `json:"template_id" validate:"required,template_id"`
	ColorSchemeID string `json:"color_scheme_id" validate:"omitempty,color_scheme_id"`
	Category      string `json:"category" validate:"omitempty,skill_category"`
	Years         int    `json:"years" validate:"gte=0,lte=60"`
}

func strPtr(s string) *string { return &s }

func TestValidate_DateAfter(t *testing.T) {
	ok := periodRequest{Title: "x", StartDate: "2020-01-01", EndDate: strPtr("2021-01-01")}
	require.NoError(t, Validate(ok))

	noEnd := periodRequest{Title: "x", StartDate: "2020-01-01"}
	require.NoError(t, Validate(noEnd))

	bad := periodRequest{Title: "x", StartDate: "2020-01-01", EndDate: strPtr("2019-12-31")}
	err := Validate(bad)
	require.Error(t, err)
	assert.Equal(t, []string{"end_date must be after start_date"}, Messages(err))

	same := periodRequest{Title: "x", StartDate: "2020-01-01", EndDate: strPtr("2020-01-01")}
	assert.Error(t, Validate(same))
}

func TestValidate_DateAfterIgnoresCurrentEntries(t *testing.T) {
	current := currentPeriodRequest{StartDate: "2020-01-01", EndDate: strPtr("2019-01-01"), IsCurrent: true}
	require.NoError(t, Validate(current))

	current.IsCurrent = false
	err := Validate(current)
	require.Error(t, err)
	assert.Equal(t, []string{"end_date must be after start_date"}, Messages(err))
}

func TestValidate_MessagesUseJSONNames(t *testing.T) {
	err := Validate(periodRequest{Title: "way too long title", StartDate: "01/02/2020"})
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	msgs := Messages(err)
	assert.Equal(t, []string{
		"title must be at most 10 characters",
		"start_date must be a date in YYYY-MM-DD format",
	}, msgs)
}

func TestValidate_RegistryTags(t *testing.T) {
	require.NoError(t, Validate(appearanceRequest{TemplateID: "modern", ColorSchemeID: "ocean-blue", Category: "databases"}))

	err := Validate(appearanceRequest{TemplateID: "nope", ColorSchemeID: "nope", Category: "nope", Years: 61})
	require.Error(t, err)
	assert.Equal(t, []string{
		"template_id must be a known template",
		"color_scheme_id must be a known color scheme",
		"category must be a known skill category",
		"years must be less than or equal to 60",
	}, Messages(err))
}

func TestMessages_NonValidationError(t *testing.T) {
	assert.Nil(t, Messages(nil))
	assert.False(t, IsValidationError(assert.AnError))
	assert.Equal(t, []string{assert.AnError.Error()}, Messages(assert.AnError))
}
