package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/achilleasa/isoray/renderer"
	"github.com/achilleasa/isoray/scene"
	"github.com/achilleasa/isoray/scene/reader"
	"github.com/achilleasa/isoray/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := parseOptions(ctx)
	world, err := loadWorld(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(world, pickScheduler(opts), buildTracers(opts), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(opts.StartTime); err != nil {
		return err
	}
	displayFrameStats(r.Stats())

	return savePNG(r, ctx.String("out"))
}

// Render an animation as a sequence of numbered png files. The output flag
// acts as a filename template and must contain an integer format verb.
func RenderAnim(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := parseOptions(ctx)
	world, err := loadWorld(ctx)
	if err != nil {
		return err
	}

	pattern := ctx.String("out")
	if !strings.Contains(pattern, "%") {
		return fmt.Errorf("output pattern %q must contain a format verb, e.g. frame-%%04d.png", pattern)
	}

	r, err := renderer.NewDefault(world, pickScheduler(opts), buildTracers(opts), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	start := time.Now()
	for idx := 0; idx < opts.FrameCount; idx++ {
		t := opts.StartTime + float64(idx)*opts.TimeStep
		if err = r.Render(t); err != nil {
			return err
		}

		// Build the next frame's geometry while this one is encoded.
		if idx+1 < opts.FrameCount {
			r.Prefetch(t + opts.TimeStep)
		}

		file := fmt.Sprintf(pattern, idx)
		if err = savePNG(r, file); err != nil {
			return err
		}
		logger.Infof("frame %d/%d (t=%.3f) -> %s", idx+1, opts.FrameCount, t, file)
	}
	logger.Noticef("rendered %d frames in %s", opts.FrameCount, time.Since(start))

	return nil
}

// Use opengl to render a continuously updating view of the animated scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := parseOptions(ctx)
	world, err := loadWorld(ctx)
	if err != nil {
		return err
	}
	if ctx.NArg() == 1 {
		opts.ScenePath = ctx.Args().First()
	}

	r, err := renderer.NewInteractive(world, pickScheduler(opts), buildTracers(opts), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render(opts.StartTime)
}

func parseOptions(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		FrameW:      uint32(ctx.Int("width")),
		FrameH:      uint32(ctx.Int("height")),
		StartTime:   ctx.Float64("start-time"),
		TimeStep:    ctx.Float64("time-step"),
		FrameCount:  ctx.Int("frames"),
		UseParallel: !ctx.Bool("sequential"),
		Workers:     ctx.Int("workers"),
	}
}

// Load the scene descriptor named by the first command argument or fall back
// to the built-in demo scene.
func loadWorld(ctx *cli.Context) (*scene.World, error) {
	if ctx.NArg() == 0 {
		logger.Notice("no scene file given, using built-in scene")
		return reader.Default(), nil
	}
	return reader.ReadFile(ctx.Args().First())
}

// Assemble the tracer pool. The worker-pool backend does the bulk of the
// work; the sequential reference tracer is always attached so the scheduler
// has a second target and its blocks double as an ongoing consistency check.
func buildTracers(opts renderer.Options) []tracer.Tracer {
	if !opts.UseParallel {
		return []tracer.Tracer{tracer.NewSequential("sequential-0")}
	}
	return []tracer.Tracer{
		tracer.NewParallel("parallel-0", opts.Workers),
		tracer.NewSequential("sequential-0"),
	}
}

func pickScheduler(opts renderer.Options) tracer.BlockScheduler {
	if !opts.UseParallel {
		return tracer.NaiveScheduler()
	}
	return tracer.NewPerfectScheduler()
}

func savePNG(r renderer.Renderer, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, r.Frame())
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
