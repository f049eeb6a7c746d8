package main

import (
	"os"

	"github.com/jimbok8/lbvh-1/cmd"
	"github.com/jimbok8/lbvh-1/pipeline"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "lbvh-check"
	app.Usage = "build a linear BVH over a wavefront model and validate it"
	app.Version = "0.0.1"
	app.HideVersion = true
	app.HideHelp = true
	app.ArgsUsage = "[model.obj]"
	app.Description = `
Load a wavefront obj model (default: ` + pipeline.DefaultModelPath + `), build a
linear BVH over its faces and check that every node is referenced exactly once
and that child volumes never exceed the volume of their parent. A smoke-test
frame is then traced through the hierarchy.

Settings can be overridden by a YAML file named by the ` + cmd.ConfigEnvVar + `
environment variable. The exit status is non-zero if any check fails.`
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "errors-fatal, errors_fatal",
			Usage: "stop at the first violation",
		},
	}
	app.Action = cmd.CheckModel
	app.OnUsageError = cmd.OnUsageError

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}
