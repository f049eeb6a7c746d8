package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jimbok8/lbvh-1/pipeline"
	"github.com/urfave/cli"
)

// Environment variable naming an optional YAML config file.
const ConfigEnvVar = "LBVH_CONFIG"

// Load a model, build a hierarchy over it and validate the result.
func CheckModel(ctx *cli.Context) error {
	cfg, err := buildConfig(ctx)
	if err != nil {
		var usageErr *UsageError
		if !errors.As(err, &usageErr) {
			logger.Error(err)
		}
		return err
	}

	if err = setupLogging(cfg.LogLevel); err != nil {
		logger.Error(err)
		return err
	}

	rep := pipeline.New(cfg).Run()
	if !rep.Validation.Ok() {
		logger.Warningf("validation findings:\n%s", rep.Validation.Table())
	}
	logger.Noticef("check summary:\n%s", rep.Table())

	if rep.Status >= pipeline.StatusViolation {
		return rep.Err()
	}
	return nil
}

// Assemble the run configuration. Settings are applied in order: defaults,
// the config file named by ConfigEnvVar and finally the command line.
func buildConfig(ctx *cli.Context) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	// Flag parsing stops at the first positional argument so a trailing
	// fail-fast flag ends up in the argument list.
	var models []string
	errorsFatal := ctx.Bool("errors-fatal")
	for _, arg := range ctx.Args() {
		switch {
		case isErrorsFatalFlag(arg):
			errorsFatal = true
		case strings.HasPrefix(arg, "-"):
			return cfg, usageError(ctx, "flag provided but not defined: "+arg)
		default:
			models = append(models, arg)
		}
	}
	if len(models) > 1 {
		return cfg, usageError(ctx, fmt.Sprintf("expected at most one model argument; got %d", len(models)))
	}

	if cfgFile := os.Getenv(ConfigEnvVar); cfgFile != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(cfgFile, cfg); err != nil {
			return cfg, err
		}
	}

	if len(models) == 1 {
		cfg.ModelPath = models[0]
	}
	if errorsFatal {
		cfg.ErrorsFatal = true
	}

	return cfg, cfg.Validate()
}

func isErrorsFatalFlag(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "errors-fatal", "errors_fatal":
		return strings.HasPrefix(arg, "-")
	}
	return false
}
