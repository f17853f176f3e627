package humane

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/humane/report"
)

// Flags holds CLI flag names for emitter configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	DebugEnabled string
	Color        string
	ReportDir    string
	ReportURL    string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Color: ColorAuto,
		Flags: f,
	}
}

// Config holds emitter configuration.
//
// Create instances with [NewConfig] or [LoadConfig] and register CLI flags
// with [Config.RegisterFlags]. Use [New] to build an [Emitter] from it.
type Config struct {
	// Palette maps lowercase severity names to color tokens (see
	// [ColorTokens]). A non-nil palette replaces the defaults entirely;
	// severities it omits, or maps to an empty token, render plain. Nil
	// means [DefaultPalette].
	Palette map[string]string `yaml:"palette" validate:"omitempty,dive,keys,severityname,endkeys,colortoken"`
	// Environment adds fixed key/value pairs to every crash report.
	Environment map[string]string `yaml:"environment"`
	// Color selects the output mode: [ColorAuto], [ColorAlways], or
	// [ColorNever].
	Color string `yaml:"color" validate:"omitempty,oneof=auto always never"`
	// ReportDir receives crash artifacts. Empty disables persistence.
	ReportDir string `yaml:"report_dir"`
	// ReportURL names where users file bug reports.
	ReportURL string `yaml:"report_url"`
	// CrashMessage opens the crash instruction text.
	CrashMessage string `yaml:"crash_message"`
	// InstructionTemplate overrides [report.DefaultTemplate].
	InstructionTemplate string `yaml:"instruction_template" validate:"omitempty,instructiontemplate"`
	// DebugEnabled renders DEBUG messages instead of suppressing them.
	DebugEnabled bool `yaml:"debug_enabled"`
	// Flags holds the CLI flag names used by [Config.RegisterFlags].
	Flags Flags `yaml:"-"`
}

// NewConfig returns a new [Config] with default values.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		DebugEnabled: "debug",
		Color:        "color",
		ReportDir:    "report-dir",
		ReportURL:    "report-url",
	}

	return f.NewConfig()
}

// LoadConfig reads a YAML config file and validates it. Fields the file
// omits keep their [NewConfig] defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := NewConfig()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// RegisterFlags adds emitter flags to the given [*pflag.FlagSet]. Current
// field values become the flag defaults.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&c.DebugEnabled, c.Flags.DebugEnabled, c.DebugEnabled,
		"render debug messages")
	flags.StringVar(&c.Color, c.Flags.Color, c.Color,
		fmt.Sprintf("color mode, one of: %s", ColorModes()))
	flags.StringVar(&c.ReportDir, c.Flags.ReportDir, c.ReportDir,
		"directory for crash report artifacts (empty disables persistence)")
	flags.StringVar(&c.ReportURL, c.Flags.ReportURL, c.ReportURL,
		"where users should submit crash reports")
}

// RegisterCompletions registers shell completions for emitter flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	dirComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	}
	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	err := cmd.RegisterFlagCompletionFunc(c.Flags.Color,
		cobra.FixedCompletions(ColorModes(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Color, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.ReportDir, dirComp)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ReportDir, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.ReportURL, noFileComp)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ReportURL, err)
	}

	return nil
}

// Validate checks the configuration, returning an error wrapping
// [ErrInvalidConfig] when any field is out of range.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// palette resolves the configured palette into severity renderers. Severities
// without a usable entry are absent from the result and render plain.
func (c *Config) palette() (map[Severity]*color.Color, error) {
	tokens := c.Palette
	if tokens == nil {
		tokens = DefaultPalette()
	}

	colors := make(map[Severity]*color.Color, len(tokens))

	for name, token := range tokens {
		sev, err := ParseSeverity(name)
		if err != nil {
			return nil, err
		}

		if token == "" {
			continue
		}

		col, err := ParseColor(token)
		if err != nil {
			return nil, err
		}

		colors[sev] = col
	}

	return colors, nil
}

// NewEmitter creates a new [Emitter] using this [Config]. It delegates to
// [New].
func (c *Config) NewEmitter(opts ...Option) (*Emitter, error) {
	return New(c, opts...)
}

// validate is the shared struct validator with the custom tag validations
// used by [Config].
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	register := func(tag string, fn validator.Func) {
		err := v.RegisterValidation(tag, fn)
		if err != nil {
			panic(fmt.Sprintf("registering %s validation: %v", tag, err))
		}
	}

	register("severityname", func(fl validator.FieldLevel) bool {
		_, err := ParseSeverity(fl.Field().String())

		return err == nil
	})
	register("colortoken", func(fl validator.FieldLevel) bool {
		token := fl.Field().String()
		if token == "" {
			return true
		}

		_, err := ParseColor(token)

		return err == nil
	})
	register("instructiontemplate", func(fl validator.FieldLevel) bool {
		return report.ValidateTemplate(fl.Field().String()) == nil
	})

	// Report field names by their YAML tags in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}
