package config

import (
	"flag"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-a", "-b", "-u", "-m", "-n"})

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-d", "c3.example.org", "-a", "unix:/tmp/dict.socket", "-b", "/tmp/passdb.sqlite",
			"-u", "vmail", "-m", "/srv/vmail", "-n", "/etc/doveauthd/nocreate",
		}, expectPanic: false,
			expected: &Config{
				MailDomain:   "c3.example.org",
				ListenAddr:   "unix:/tmp/dict.socket",
				DatabaseDSN:  "/tmp/passdb.sqlite",
				VmailUser:    "vmail",
				VmailDir:     "/srv/vmail",
				NocreateFile: "/etc/doveauthd/nocreate",
			}},
		{name: "Test2 partial args keep zero values", args: []string{"cmd",
			"-d", "c2.example.org",
		}, expectPanic: false,
			expected: &Config{
				MailDomain: "c2.example.org",
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			origArgs := os.Args
			os.Args = tt.args
			t.Cleanup(func() { os.Args = origArgs })

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
