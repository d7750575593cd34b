package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	LogsDirName       = "session_logs"
	AppLogName        = "app.log"
)

type Configuration struct {
	configFs afero.Fs

	// Prompt is printed before every line read.
	Prompt string `json:"prompt"`
	// PromptColor optionally colors the prompt on capable terminals.
	PromptColor string `json:"prompt_color" validate:"omitempty,oneof=black red green yellow blue magenta cyan white"`
	// MaxArgs caps the number of arguments kept per command.
	MaxArgs int `json:"max_args" validate:"gte=1"`
	// RecordSessions enables terminal transcripts under session_logs.
	RecordSessions bool `json:"record_sessions"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// CreateSessionLog creates a new transcript file in the session logs
// directory.
func (c *Configuration) CreateSessionLog(name string) (afero.File, error) {
	toCreate := filepath.Join(LogsDirName, name)
	return c.fs().Create(toCreate)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration backed by an in-memory
// filesystem. It's used when no configuration directory has been
// initialized; session artifacts recorded against it don't outlive the
// process.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	return out
}
