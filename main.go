package main

import (
	"os"

	"github.com/achilleasa/isoray/cmd"
	"github.com/urfave/cli"
)

func frameFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.Float64Flag{
			Name:  "start-time",
			Value: 0.0,
			Usage: "scene time of the first frame (seconds)",
		},
		cli.BoolFlag{
			Name:  "sequential",
			Usage: "trace with the sequential reference backend only",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "worker count for the parallel backend (0 = one per cpu)",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "isoray"
	app.Usage = "render animated metaball scenes using ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "info",
			Usage: "display serialized buffer layout for a scene",
			Description: `
Load a scene definition, polygonize its metaball surfaces, build the
acceleration trees for the first frame and print the resulting buffer sizes.`,
			ArgsUsage: "[scene_file.json]",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "start-time",
					Value: 0.0,
					Usage: "scene time to build the frame at (seconds)",
				},
			},
			Action: cmd.ShowSceneInfo,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame and save it as a png image.`,
					ArgsUsage:   "[scene_file.json]",
					Flags: append(frameFlags(),
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "anim",
					Usage:       "render animation frames",
					Description: `Render a frame sequence, advancing the scene time by a fixed step per frame.`,
					ArgsUsage:   "[scene_file.json]",
					Flags: append(frameFlags(),
						cli.IntFlag{
							Name:  "frames",
							Value: 60,
							Usage: "number of frames to render",
						},
						cli.Float64Flag{
							Name:  "time-step",
							Value: 1.0 / 30.0,
							Usage: "scene time advance per frame (seconds)",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame-%04d.png",
							Usage: "image filename pattern for the rendered frames",
						},
					),
					Action: cmd.RenderAnim,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Play the animation in a window, reloading the scene file when it changes.`,
					ArgsUsage:   "[scene_file.json]",
					Flags: append(frameFlags(),
						cli.Float64Flag{
							Name:  "time-step",
							Value: 0.0,
							Usage: "scene time advance per frame (0 = wall clock)",
						},
					),
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	app.Run(os.Args)
}
