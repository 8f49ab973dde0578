package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/newsverify/adkbridge/pkg/model"
)

func TestMetadataUserID(t *testing.T) {
	tests := []struct {
		name     string
		meta     model.Metadata
		expected string
	}{
		{
			name:     "wa_from has priority",
			meta:     model.Metadata{User: &model.User{WAFrom: "+4915112345678", ID: "backend-7"}},
			expected: "+4915112345678",
		},
		{
			name:     "backend id as fallback",
			meta:     model.Metadata{User: &model.User{ID: "backend-7"}},
			expected: "backend-7",
		},
		{
			name:     "empty user block",
			meta:     model.Metadata{User: &model.User{}},
			expected: "anonymous",
		},
		{
			name:     "no user block",
			meta:     model.Metadata{},
			expected: "anonymous",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, tc.meta.UserID(), tc.expected)
		})
	}
}

func TestVerdictValidate(t *testing.T) {
	gt.NoError(t, model.VerdictVerified.Validate())
	gt.NoError(t, model.VerdictUnverified.Validate())
	gt.Error(t, model.Verdict("maybe").Validate())
	gt.Error(t, model.Verdict("").Validate())
}
