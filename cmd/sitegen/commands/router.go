package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sitegen/internal/controlfiles"
	"git.home.luguber.info/inful/sitegen/internal/router"
)

// RouterCmd is the long-lived static server child. It is spawned by the
// serve command and not meant to be invoked directly.
type RouterCmd struct {
	Root    string `name:"root" required:"" help:"Document root to serve."`
	Control string `name:"control" required:"" help:"Control directory written by the serve loop."`
	Host    string `name:"host" default:"localhost" help:"Bind host."`
	Port    int    `name:"port" default:"8000" help:"Bind port."`
}

func (r *RouterCmd) Run(_ *Global) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := router.New(r.Root, controlfiles.Open(r.Control))
	err := srv.ListenAndServe(ctx, r.Host, r.Port)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
