package main

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/textgrid/pkg/config"
)

var userConfigPathFn = config.UserConfigPath

func (a *app) runConfig(ctx context.Context, args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	var common commonFlags
	fs := a.newFlagSet("config "+sub, "[FLAGS]")
	common.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	switch sub {
	case "path":
		fmt.Fprintln(a.stdout, userConfigPathFn())
		return nil
	case "show", "check":
	default:
		return withExitCode(fmt.Errorf("unknown config command: %s (use show, check or path)", sub), exitUsage)
	}

	e, err := a.setup(&common, fs)
	if err != nil {
		return err
	}
	defer e.Close()

	if sub == "check" {
		e.out.Success("configuration is valid")
		e.out.Dim("theme %s, color level %s, width %d", e.theme.Name, e.cfg.Output.ColorLevel, e.width)
		return nil
	}
	data, err := yaml.Marshal(e.cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = a.stdout.Write(data)
	return err
}
