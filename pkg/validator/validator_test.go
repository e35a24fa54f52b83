package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type registerDevicePayload struct {
	UserID       string `json:"user_id" validate:"required,uuid"`
	Platform     string `json:"platform" validate:"required,oneof=ios android web"`
	QuietEndHour int    `json:"quiet_end_hour" validate:"min=0,max=23"`
}

func TestValidateStructPasses(t *testing.T) {
	payload := registerDevicePayload{
		UserID:       "7b7ad57a-43eb-433b-a5e1-bd9c75b0a1f4",
		Platform:     "android",
		QuietEndHour: 7,
	}

	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	payload := registerDevicePayload{
		UserID:       "not-a-uuid",
		Platform:     "windows",
		QuietEndHour: 24,
	}

	err := ValidateStruct(payload)
	require.Error(t, err)

	var failures ValidationErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 3)

	fields := make(map[string]ValidationError, len(failures))
	for _, failure := range failures {
		fields[failure.Field] = failure
	}
	require.Contains(t, fields, "user_id")
	require.Contains(t, fields, "platform")
	require.Equal(t, "max", fields["quiet_end_hour"].Tag)
	require.Equal(t, "23", fields["quiet_end_hour"].Param)
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "quiet_end_hour", Tag: "max", Param: "23"},
		{Field: "platform", Tag: "required"},
	}

	require.Equal(t, "quiet_end_hour: max=23, platform: required", errs.Error())
	require.Equal(t, "validation failed", ValidationErrors{}.Error())
}
