package main

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want command
	}{
		{
			name: "update",
			args: []string{"update"},
			want: command{name: "update"},
		},
		{
			name: "global flags before command",
			args: []string{"--config", "/etc/st.yaml", "--data", "/var/lib/st", "--debug", "update"},
			want: command{name: "update", global: globalOptions{configPath: "/etc/st.yaml", dataDir: "/var/lib/st", debug: true}},
		},
		{
			name: "init",
			args: []string{"init", "--access-key", "abc"},
			want: command{name: "init", accessKey: "abc"},
		},
		{
			name: "init force",
			args: []string{"init", "--access-key=abc", "--force"},
			want: command{name: "init", accessKey: "abc", force: true},
		},
		{
			name: "print default year",
			args: []string{"print"},
			want: command{name: "print"},
		},
		{
			name: "print year",
			args: []string{"print", "--year", "2023"},
			want: command{name: "print", year: 2023},
		},
		{
			name: "watch interval",
			args: []string{"watch", "--interval", "5m"},
			want: command{name: "watch", interval: 5 * time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.args, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"export"}},
		{"unknown global flag", []string{"--verbose", "update"}},
		{"init without key", []string{"init"}},
		{"print bad year", []string{"print", "--year", "soon"}},
		{"print negative year", []string{"print", "--year", "-1"}},
		{"watch bad interval", []string{"watch", "--interval", "often"}},
		{"trailing arguments", []string{"update", "now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCommand(tt.args, io.Discard)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestParseCommand_Help(t *testing.T) {
	_, err := parseCommand([]string{"-h"}, io.Discard)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}
