package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/doveauthd/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   mail domain served by this backend
//	-a string   dict listener address ("unix:/path" or "host:port")
//	-b string   SQLite database path
//	-u string   storage-owner system account name
//	-m string   mailbox storage root directory
//	-n string   path of the creation-disabled sentinel file
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-a", "-b", "-u", "-m", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.MailDomain, "d", config.MailDomain, "mail domain")
	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "dict listener address")
	fs.StringVar(&config.DatabaseDSN, "b", config.DatabaseDSN, "SQLite database path")
	fs.StringVar(&config.VmailUser, "u", config.VmailUser, "storage-owner account name")
	fs.StringVar(&config.VmailDir, "m", config.VmailDir, "mailbox storage root")
	fs.StringVar(&config.NocreateFile, "n", config.NocreateFile, "creation-disabled sentinel path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
