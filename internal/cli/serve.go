package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipd/internal/ports"
	"clipd/internal/server"
	"clipd/internal/usecase"
)

type builtDeps struct {
	uc    usecase.Usecase
	video ports.VideoTool
}

func newServeCommand(log *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clip detection HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, deps, err := buildUsecase(cmd, log)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				cfg.Listen = addr
			}

			srv := server.New(server.Config{
				Addr:           cfg.Listen,
				UploadsDir:     cfg.UploadsDir,
				ClipsDir:       cfg.ClipsDir,
				WindowSeconds:  cfg.ChunkWindowSeconds,
				OverlapSeconds: cfg.ChunkOverlapSeconds,
				RequestTimeout: cfg.RequestTimeout(),
			}, deps.uc, deps.video, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().String("listen", "", "Listen address (overrides config)")
	return cmd
}
