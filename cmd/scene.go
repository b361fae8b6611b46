package cmd

import (
	"github.com/urfave/cli"
)

// Display the serialized buffer layout for one frame of the scene: per
// instance vertex, triangle and tree node counts plus total buffer sizes.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	world, err := loadWorld(ctx)
	if err != nil {
		return err
	}

	frame, err := world.BuildFrame(ctx.Float64("start-time"))
	if err != nil {
		return err
	}

	buffers := frame.Serialize()
	logger.Noticef("scene information:\n%s", buffers.Stats())

	return nil
}
