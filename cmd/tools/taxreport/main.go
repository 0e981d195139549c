package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tax/internal/config"
	"github.com/noah-isme/backend-tax/internal/declaration"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/report"
	"github.com/noah-isme/backend-tax/internal/taxcalc"
)

func main() {
	logger := obs.NewLoggerTo(os.Stderr, "console", "info")
	if err := run(os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		var verr *declaration.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				logger.Error().Str("field", f.Field).Msg(f.Message)
			}
			os.Exit(2)
		}
		logger.Fatal().Err(err).Msg("taxreport")
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("taxreport", flag.ContinueOnError)
	var (
		in     = fs.String("in", "-", "declaration JSON file; - reads stdin")
		out    = fs.String("out", "-", "report destination; - writes stdout")
		format = fs.String("format", "text", "output format: text or json")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	payload, err := readPayload(*in, stdin)
	if err != nil {
		return err
	}
	validator := declaration.NewValidator(declaration.Options{Max80D: cfg.Max80D, DefaultEPF: cfg.DefaultEPF})
	input, err := validator.Validate(payload)
	if err != nil {
		return err
	}
	breakdown := taxcalc.Build(input)

	w := stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(*format) {
	case "text":
		if _, err := io.WriteString(w, report.Text(breakdown)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"breakdown": breakdown, "comparison": report.Compare(breakdown)}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	logger.Info().
		Str("recommended", report.Compare(breakdown).Recommended.String()).
		Str("out", *out).
		Msg("report written")
	return nil
}

func readPayload(path string, stdin io.Reader) (declaration.Payload, error) {
	var payload declaration.Payload
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return payload, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return payload, fmt.Errorf("decode declaration: %w", err)
	}
	return payload, nil
}
