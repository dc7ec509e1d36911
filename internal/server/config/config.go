// Package config handles configuration for the doveauthd daemon,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings shared by the daemon and the
// provisioning endpoint.
//
// Fields:
//   - MailDomain: the domain this backend serves; new addresses are minted
//     under it and lookups are expected to carry it.
//   - ListenAddr: dict listener address, "unix:/path" or "host:port".
//   - DatabaseDSN: path of the SQLite credential store.
//   - VmailUser: system account owning all mailbox storage; reported as
//     both uid and gid on every lookup.
//   - VmailDir: root under which per-address home directories live.
//   - NocreateFile: path whose existence disables account auto-creation.
type Config struct {
	MailDomain   string
	ListenAddr   string
	DatabaseDSN  string
	VmailUser    string
	VmailDir     string
	NocreateFile string
}

// LoadDefaults populates Config with the conventional deployment layout.
func (c *Config) LoadDefaults() {
	c.MailDomain = "example.org"
	c.ListenAddr = "unix:/run/doveauthd/doveauthd.socket"
	c.DatabaseDSN = "/home/vmail/passdb.sqlite"
	c.VmailUser = "vmail"
	c.VmailDir = "/home/vmail"
	c.NocreateFile = "/etc/doveauthd/nocreate"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
