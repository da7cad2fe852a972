package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Main: MainSettings{Name: "ROI-Import"},
		Flywheel: FlywheelSettings{
			APIKey:  "fw.example.com:443:secret",
			Timeout: 30 * time.Second,
		},
		Import: ImportSettings{
			FirstRow:  1,
			Delimiter: ",",
			Workers:   1,
		},
	}
}

func TestValidateSettingsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{
			name:    "zero first row",
			mutate:  func(s *Settings) { s.Import.FirstRow = 0 },
			wantErr: "firstrow",
		},
		{
			name:    "multi character delimiter",
			mutate:  func(s *Settings) { s.Import.Delimiter = ",," },
			wantErr: "delimiter",
		},
		{
			name:    "zero workers",
			mutate:  func(s *Settings) { s.Import.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "negative timeout",
			mutate:  func(s *Settings) { s.Flywheel.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name: "api key without host",
			mutate: func(s *Settings) {
				s.Flywheel.APIKey = "secretonly"
				s.Flywheel.Host = ""
			},
			wantErr: "apikey",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettingsExplicitHost(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Flywheel.APIKey = "secretonly"
	s.Flywheel.Host = "https://fw.example.com"
	assert.NoError(t, ValidateSettings(s))
}
