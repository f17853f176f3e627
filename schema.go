package humane

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/humane/report"
)

// JSON Schema type names.
const (
	typeObject  = "object"
	typeString  = "string"
	typeBoolean = "boolean"
)

// ConfigSchema returns a JSON Schema for the [Config] file format, suitable
// for editor integration and config validation tooling.
func ConfigSchema() *jsonschema.Schema {
	names := SeverityNames()
	paletteProps := make(map[string]*jsonschema.Schema, len(names))

	for _, name := range names {
		paletteProps[name] = &jsonschema.Schema{
			Type:        typeString,
			Description: "color token for " + name + " messages; empty renders plain",
			Enum:        stringEnum(append([]string{""}, ColorTokens()...)),
		}
	}

	return &jsonschema.Schema{
		Schema: "http://json-schema.org/draft-07/schema#",
		Title:  "humane configuration",
		Type:   typeObject,
		Properties: map[string]*jsonschema.Schema{
			"debug_enabled": {
				Type:        typeBoolean,
				Description: "render debug messages",
				Default:     defaultValue(false),
			},
			"color": {
				Type:        typeString,
				Description: "color output mode",
				Enum:        stringEnum(ColorModes()),
				Default:     defaultValue(ColorAuto),
			},
			"palette": {
				Type: typeObject,
				Description: "severity name to color token mapping; " +
					"replaces the default palette entirely",
				Properties:           paletteProps,
				PropertyOrder:        names,
				AdditionalProperties: falseSchema(),
			},
			"report_dir": {
				Type:        typeString,
				Description: "directory for crash report artifacts (empty disables persistence)",
			},
			"report_url": {
				Type:        typeString,
				Description: "where users should submit crash reports",
				Default:     defaultValue(report.DefaultURL),
			},
			"crash_message": {
				Type:        typeString,
				Description: "opening line of the crash instruction",
				Default:     defaultValue(report.DefaultCrashMessage),
			},
			"instruction_template": {
				Type: typeString,
				Description: "crash instruction template; recognizes {{crash_message}}, " +
					"{{url}}, {{report_path}}, and {{report_id}}",
				Default: defaultValue(report.DefaultTemplate),
			},
			"environment": {
				Type:                 typeObject,
				Description:          "fixed key/value pairs added to every crash report",
				AdditionalProperties: &jsonschema.Schema{Type: typeString},
			},
		},
		PropertyOrder: []string{
			"debug_enabled", "color", "palette", "report_dir",
			"report_url", "crash_message", "instruction_template", "environment",
		},
		AdditionalProperties: falseSchema(),
	}
}

// defaultValue converts a Go value to a [json.RawMessage] suitable for use
// as a JSON Schema default value. Returns nil if marshaling fails.
func defaultValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return b
}

// falseSchema returns a schema that validates nothing (marshals to JSON
// false).
func falseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

func stringEnum(values []string) []any {
	enum := make([]any, 0, len(values))

	for _, v := range values {
		enum = append(enum, v)
	}

	return enum
}
