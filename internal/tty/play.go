package tty

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/Seednode/whosaid/internal/game"
)

// Play runs one session on screen until the player quits or ctx ends. The
// presenter and scheduler in cfg are replaced with the terminal's own.
func Play(ctx context.Context, screen tcell.Screen, cfg game.Config) error {
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := game.NewLoop()
	view := NewView(screen)

	cfg.Presenter = view
	cfg.Scheduler = loop
	ctrl := game.NewController(cfg)

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}

			switch ev := ev.(type) {
			case *tcell.EventKey:
				loop.Post(func() {
					name, quit := view.Key(ev)
					if quit {
						cancel()
						return
					}
					if name != "" {
						ctrl.Select(name)
					}
				})
			case *tcell.EventResize:
				loop.Post(func() {
					screen.Sync()
					view.Draw()
				})
			}
		}
	}()

	loop.Post(func() {
		view.Draw()
		ctrl.Start(ctx)
	})
	loop.Run(ctx)

	return nil
}
