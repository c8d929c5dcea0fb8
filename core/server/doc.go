// Package server provides an HTTP server wrapper with graceful shutdown,
// environment-driven configuration, and errgroup-friendly lifecycle hooks.
//
// Example:
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, mux))
//	return g.Wait()
//
// TLS termination is deliberately out of scope; run the server behind a
// proxy that owns certificates.
package server
