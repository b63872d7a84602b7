// Package httpserver runs net/http servers with configured timeouts and
// graceful shutdown driven by context cancellation.
//
//	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// Liveness and Readiness provide the probe handlers mounted at /healthz and /readyz.
package httpserver
