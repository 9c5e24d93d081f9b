package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/internal/errors"
)

func TestSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{
			name: "full edit URL",
			ref:  "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0",
			want: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		},
		{
			name: "sharing URL",
			ref:  "https://docs.google.com/spreadsheets/d/abc-123_XYZ/edit?usp=sharing",
			want: "abc-123_XYZ",
		},
		{
			name: "bare ID",
			ref:  "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
			want: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		},
		{name: "empty", ref: "   ", wantErr: true},
		{name: "unrelated URL", ref: "https://example.com/some/path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SpreadsheetID(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToStrings(t *testing.T) {
	row := []interface{}{"region", 42, 3.5, true, nil}
	assert.Equal(t, []string{"region", "42", "3.5", "true", ""}, toStrings(row))
}
