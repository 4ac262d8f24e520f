package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/model"
	"github.com/cozy-creator/greenlens/internal/server"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the greenlens web server",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", config.DefaultPort, "Port to run the server on")
	flags.String("host", "localhost", "Host to run the server on")
	flags.String("environment", "dev", "Environment configuration: dev, test or prod")
	flags.String("public-dir", "", "Directory whose files override the embedded static assets. Relative paths are relative to the current working directory.")

	flags.String("backend", "", "Model backend: huggingface, openai or openai-compatible")
	flags.String("model", "", "Model name")
	flags.String("device", "", "Device: auto, gpu or cpu")
}

func runApp(_ *cobra.Command, _ []string) error {
	errc := make(chan error, 1)
	signalc := make(chan os.Signal, 1)

	app, err := app.NewApp(config.MustGetConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := app.Context()

	srv, err := runServer(app, errc)
	if err != nil {
		return err
	}

	// The page is served while the model loads; submissions get a loading
	// notice until it is ready.
	go loadModel(ctx, app)

	signal.Notify(signalc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalc)

	select {
	case err := <-errc:
		return err
	case <-signalc:
		app.Logger.Info("shutting down")
		return srv.Stop(context.Background())
	}
}

func loadModel(ctx context.Context, app *app.App) {
	if err := app.LoadModel(ctx); err != nil {
		var loadErr *model.LoadError
		if errors.As(err, &loadErr) {
			app.Logger.Error("model failed to load, submissions will be rejected",
				zap.String("model", loadErr.Model),
				zap.Error(loadErr.Err),
			)
			return
		}
		app.Logger.Error("model failed to load", zap.Error(err))
	}
}

func runServer(app *app.App, errc chan<- error) (*server.Server, error) {
	srv, err := server.NewServer(app.Config())
	if err != nil {
		return nil, err
	}

	srv.SetupRoutes(app)

	go func() {
		app.Logger.Info(fmt.Sprintf("GreenLens started on http://%s", srv.Addr()))
		if err := srv.Start(); err != nil {
			errc <- err
		}
	}()

	return srv, nil
}
