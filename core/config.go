package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Mail backends
const (
	MailBackendConsole  = "console"
	MailBackendSMTP     = "smtp"
	MailBackendSendgrid = "sendgrid"
)

type Config struct {
	AppName string
	Debug   bool
	WorkDir string

	Database struct {
		Path string
	}

	Roster struct {
		ImportPath string // CSV roster used by import-roster
	}

	Attendance struct {
		BulkImportPath  string // default file for bulk-mark-attended
		AtRiskThreshold int
	}

	Mail struct {
		Backend      string
		Sender       mail.Address
		Cc           []mail.Address
		Subject      string
		BodyTemplate string // path to a template file; empty uses the built-in body

		SMTPHost     string
		SMTPPort     int
		SMTPPassword string // read once from SMTP_PASSWORD at startup

		SendgridAPIKey string
	}
}

func (conf *Config) DebugOrTestMode() bool {
	return conf.Debug || strings.EqualFold(os.Getenv("ENV"), "TEST")
}

// LoadConfig reads configuration from an optional config file ("config.yml" in
// the working directory), an optional .env file, and the environment.
// Malformed or missing required settings are fatal.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "resolving working directory")
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, ".env")
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("appName", "Mahudhurio")
	v.SetDefault("debug", true)
	v.SetDefault("database.path", filepath.Join(wd, "attendance.db"))
	v.SetDefault("roster.importPath", filepath.Join(wd, "roster.csv"))
	v.SetDefault("attendance.bulkImportPath", filepath.Join(wd, "attended.txt"))
	v.SetDefault("attendance.atRiskThreshold", 2)
	v.SetDefault("mail.backend", MailBackendConsole)
	v.SetDefault("mail.sender", "noreply@localhost")
	v.SetDefault("mail.cc", "")
	v.SetDefault("mail.subject", "Unexcused lecture absence")
	v.SetDefault("mail.bodyTemplate", "")
	v.SetDefault("mail.smtpHost", "smtp.gmail.com")
	v.SetDefault("mail.smtpPort", 587)

	v.SetConfigName("config")
	v.AddConfigPath(wd)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	_ = v.BindEnv("mail.smtpPassword", "SMTP_PASSWORD")
	_ = v.BindEnv("mail.sendgridApiKey", "SENDGRID_API_KEY")
	v.AutomaticEnv()

	conf := &Config{
		AppName: v.GetString("appName"),
		Debug:   v.GetBool("debug"),
		WorkDir: wd,
	}
	conf.Database.Path = v.GetString("database.path")
	conf.Roster.ImportPath = v.GetString("roster.importPath")
	conf.Attendance.BulkImportPath = v.GetString("attendance.bulkImportPath")
	conf.Attendance.AtRiskThreshold = v.GetInt("attendance.atRiskThreshold")
	conf.Mail.Backend = strings.ToLower(v.GetString("mail.backend"))
	conf.Mail.Subject = v.GetString("mail.subject")
	conf.Mail.BodyTemplate = v.GetString("mail.bodyTemplate")
	conf.Mail.SMTPHost = v.GetString("mail.smtpHost")
	conf.Mail.SMTPPort = v.GetInt("mail.smtpPort")
	conf.Mail.SMTPPassword = v.GetString("mail.smtpPassword")
	conf.Mail.SendgridAPIKey = v.GetString("mail.sendgridApiKey")

	sender, err := mail.ParseAddress(v.GetString("mail.sender"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing mail.sender")
	}
	conf.Mail.Sender = *sender

	if ccRaw := v.GetString("mail.cc"); ccRaw != "" {
		ccList, err := mail.ParseAddressList(ccRaw)
		if err != nil {
			return nil, errors.Wrap(err, "parsing mail.cc")
		}
		for _, cc := range ccList {
			conf.Mail.Cc = append(conf.Mail.Cc, *cc)
		}
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) validate() error {
	switch conf.Mail.Backend {
	case MailBackendConsole:
	case MailBackendSMTP:
		if conf.Mail.SMTPPassword == "" {
			return errors.New("SMTP_PASSWORD is not set")
		}
	case MailBackendSendgrid:
		if conf.Mail.SendgridAPIKey == "" {
			return errors.New("SENDGRID_API_KEY is not set")
		}
	default:
		return errors.Errorf("unknown mail backend %q", conf.Mail.Backend)
	}
	if conf.Attendance.AtRiskThreshold < 0 {
		return errors.New("attendance.atRiskThreshold cannot be negative")
	}
	return nil
}
