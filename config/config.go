// Package config provides functional-option configuration for the lexer
// and parser, plus a JSON-Schema-validated tuning Profile a host program
// can ship as data instead of code.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TelemetryMode is a telemetry level recorded in LexerConfig and
// ParserConfig. Neither Lex nor Parse reads it, so no telemetry is
// collected at any level.
type TelemetryMode int

const (
	TelemetryOff TelemetryMode = iota
	TelemetryBasic
	TelemetryTiming
)

// DebugLevel controls debug tracing via the configured logger
// (development only).
type DebugLevel int

const (
	DebugOff DebugLevel = iota
	DebugPaths
	DebugDetailed
)

// IdentifierScanner selects the identifier-continuation scanning backend.
type IdentifierScanner int

const (
	// ScannerSWAR uses the portable 8-byte-word classification scan.
	ScannerSWAR IdentifierScanner = iota
	// ScannerScalar uses a plain byte-by-byte loop, for architectures or
	// debugging sessions where the SWAR fast path is undesirable.
	ScannerScalar
)

// LexerConfig holds resolved lexer configuration.
type LexerConfig struct {
	Logger            *slog.Logger
	Telemetry         TelemetryMode
	Debug             DebugLevel
	IdentifierScanner IdentifierScanner
}

// LexerOpt configures a LexerConfig.
type LexerOpt func(*LexerConfig)

// NewLexerConfig applies opts over a silent, zero-overhead default.
func NewLexerConfig(opts ...LexerOpt) LexerConfig {
	c := LexerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger attaches a logger for debug-level tracing.
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) { c.Logger = logger }
}

// WithLexerTelemetryBasic sets the lexer's Telemetry to TelemetryBasic
// (recorded only; see TelemetryMode).
func WithLexerTelemetryBasic() LexerOpt {
	return func(c *LexerConfig) { c.Telemetry = TelemetryBasic }
}

// WithLexerTelemetryTiming sets the lexer's Telemetry to TelemetryTiming
// (recorded only; see TelemetryMode).
func WithLexerTelemetryTiming() LexerOpt {
	return func(c *LexerConfig) { c.Telemetry = TelemetryTiming }
}

// WithLexerDebugPaths enables one debug-level summary record (token, line
// and diagnostic counts) when lexing finishes. Individual dispatch
// decisions are not traced.
func WithLexerDebugPaths() LexerOpt {
	return func(c *LexerConfig) { c.Debug = DebugPaths }
}

// WithIdentifierScanner selects the identifier-continuation backend.
func WithIdentifierScanner(s IdentifierScanner) LexerOpt {
	return func(c *LexerConfig) { c.IdentifierScanner = s }
}

// ParserConfig holds resolved parser configuration.
type ParserConfig struct {
	Logger    *slog.Logger
	Telemetry TelemetryMode
	Debug     DebugLevel
}

// ParserOpt configures a ParserConfig.
type ParserOpt func(*ParserConfig)

// NewParserConfig applies opts over a silent, zero-overhead default.
func NewParserConfig(opts ...ParserOpt) ParserConfig {
	c := ParserConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithParserLogger attaches a logger for debug-level tracing.
func WithParserLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) { c.Logger = logger }
}

// WithParserTelemetryBasic sets the parser's Telemetry to TelemetryBasic
// (recorded only; see TelemetryMode).
func WithParserTelemetryBasic() ParserOpt {
	return func(c *ParserConfig) { c.Telemetry = TelemetryBasic }
}

// WithParserTelemetryTiming sets the parser's Telemetry to TelemetryTiming
// (recorded only; see TelemetryMode).
func WithParserTelemetryTiming() ParserOpt {
	return func(c *ParserConfig) { c.Telemetry = TelemetryTiming }
}

// WithParserDebugPaths enables one debug-level summary record (event and
// diagnostic counts) when parsing finishes.
func WithParserDebugPaths() ParserOpt {
	return func(c *ParserConfig) { c.Debug = DebugPaths }
}

// WithParserDebugDetailed additionally logs each work-stack state as it
// is dispatched. Individual events are not traced.
func WithParserDebugDetailed() ParserOpt {
	return func(c *ParserConfig) { c.Debug = DebugDetailed }
}

// Profile is a host-loadable tuning profile for lexer/parser behavior,
// validated against profileSchema before use so a malformed configuration
// document fails fast with a useful error instead of silently producing
// nonsense token streams.
type Profile struct {
	Telemetry         string `json:"telemetry"`
	Debug             string `json:"debug"`
	IdentifierScanner string `json:"identifierScanner"`
}

const profileSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"telemetry": {"enum": ["off", "basic", "timing"]},
		"debug": {"enum": ["off", "paths", "detailed"]},
		"identifierScanner": {"enum": ["swar", "scalar"]}
	},
	"additionalProperties": false
}`

var profileSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("profile.json", strings.NewReader(profileSchemaJSON)); err != nil {
		panic(fmt.Sprintf("config: invalid embedded profile schema: %v", err))
	}
	schema, err := compiler.Compile("profile.json")
	if err != nil {
		panic(fmt.Sprintf("config: failed to compile embedded profile schema: %v", err))
	}
	profileSchema = schema
}

// LoadProfile parses and validates a JSON tuning profile document.
func LoadProfile(data []byte) (Profile, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Profile{}, fmt.Errorf("config: invalid profile JSON: %w", err)
	}
	if err := profileSchema.Validate(raw); err != nil {
		return Profile{}, fmt.Errorf("config: profile failed schema validation: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("config: invalid profile JSON: %w", err)
	}
	return p, nil
}

// LexerOpts converts a validated Profile into LexerOpt values.
func (p Profile) LexerOpts() []LexerOpt {
	var opts []LexerOpt
	switch p.Telemetry {
	case "basic":
		opts = append(opts, WithLexerTelemetryBasic())
	case "timing":
		opts = append(opts, WithLexerTelemetryTiming())
	}
	if p.Debug == "paths" {
		opts = append(opts, WithLexerDebugPaths())
	}
	if p.IdentifierScanner == "scalar" {
		opts = append(opts, WithIdentifierScanner(ScannerScalar))
	}
	return opts
}

// ParserOpts converts a validated Profile into ParserOpt values.
func (p Profile) ParserOpts() []ParserOpt {
	var opts []ParserOpt
	switch p.Telemetry {
	case "basic":
		opts = append(opts, WithParserTelemetryBasic())
	case "timing":
		opts = append(opts, WithParserTelemetryTiming())
	}
	switch p.Debug {
	case "paths":
		opts = append(opts, WithParserDebugPaths())
	case "detailed":
		opts = append(opts, WithParserDebugDetailed())
	}
	return opts
}
