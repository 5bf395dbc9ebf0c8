package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaminalder/gamehub/internal/config"
	"github.com/jaminalder/gamehub/internal/game/connect4"
	"github.com/jaminalder/gamehub/internal/game/snake"
	"github.com/jaminalder/gamehub/internal/hub"
	"github.com/jaminalder/gamehub/internal/transport"
)

func gameFactory(gameType hub.GameType) (hub.Game, error) {
	switch gameType {
	case hub.GameTypeConnect4:
		return connect4.New(), nil
	case hub.GameTypeSnake:
		return snake.New(), nil
	default:
		return nil, errors.New("unrecognised game_type: " + string(gameType))
	}
}

func serve(cfg *config.Config) error {
	h := hub.New(gameFactory, cfg.LongPollTimeout)
	router := transport.NewRouter(h, cfg.Verbose)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("gamehub listening on %s", cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.LongPollTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	log.SetFlags(0)
	cobra.CheckErr(config.NewCommand(serve).Execute())
}
