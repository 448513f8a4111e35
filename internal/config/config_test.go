/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardikabs/autodark/internal/scheduler"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantMode  scheduler.Kind
		wantStart string
		wantEnd   string
		wantErr   string
	}{
		{
			name:      "empty file keeps defaults",
			input:     "",
			wantMode:  scheduler.KindFixedWindow,
			wantStart: "22:00",
			wantEnd:   "06:00",
		},
		{
			name:      "partial override",
			input:     "defaults:\n  start: \"21:30\"\n",
			wantMode:  scheduler.KindFixedWindow,
			wantStart: "21:30",
			wantEnd:   "06:00",
		},
		{
			name:      "oracle mode",
			input:     "defaults:\n  mode: oracle\noracle:\n  latitude: -6.2\n  longitude: 106.8\n",
			wantMode:  scheduler.KindOracle,
			wantStart: "22:00",
			wantEnd:   "06:00",
		},
		{
			name:    "invalid time",
			input:   "defaults:\n  end: \"25:00\"\n",
			wantErr: "defaults.end",
		},
		{
			name:    "invalid mode",
			input:   "defaults:\n  mode: sometimes\n",
			wantErr: "defaults.mode",
		},
		{
			name:    "unknown field",
			input:   "default:\n  mode: oracle\n",
			wantErr: "decode config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			d, err := cfg.SettingsDefaults()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, d.Mode)
			assert.Equal(t, tt.wantStart, d.Window.Start.String())
			assert.Equal(t, tt.wantEnd, d.Window.End.String())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autodark.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle:\n  endpoint: http://sun.local/json\n  latitude: 52.52\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://sun.local/json", cfg.Oracle.Endpoint)
	assert.InDelta(t, 52.52, cfg.Oracle.Latitude, 1e-9)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}
