package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/doveauthd/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into
// the runtime Config struct.
type JsonConfig struct {
	MailDomain   string `json:"mail_domain"`
	ListenAddr   string `json:"listen_addr"`
	DatabaseDSN  string `json:"database_dsn"`
	VmailUser    string `json:"vmail_user"`
	VmailDir     string `json:"vmail_dir"`
	NocreateFile string `json:"nocreate_file"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a deployment pointing at a
// broken config file should not come up half-configured.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	// keys absent from the file keep their defaults
	if c.MailDomain != "" {
		config.MailDomain = c.MailDomain
	}
	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.VmailUser != "" {
		config.VmailUser = c.VmailUser
	}
	if c.VmailDir != "" {
		config.VmailDir = c.VmailDir
	}
	if c.NocreateFile != "" {
		config.NocreateFile = c.NocreateFile
	}
}
