/*
Package servers hosts the registry HTTP API.

A Server mounts any number of RouteRegistrar values (normally a
handlers.Handler) on a chi router, next to the operational endpoints:

  - GET /livez    always 200 while the process runs
  - GET /readyz   200 while ready, 503 after /drain
  - GET /drain    marks the server not ready so load balancers stop routing to it
  - GET /undrain  marks the server ready again
  - /debug/pprof  when EnablePprof is set

Every request goes through the slog request logger from flashbots/go-utils and
a panic recoverer. Prometheus metrics are served by a separate
metrics.MetricsServer on MetricsAddr.

# Example Usage

	metricsSrv, _ := metrics.New(common.PackageName, cfg.MetricsAddr)
	regs := registry.New(admin, false, registry.WithObserver(metricsSrv))
	handler := handlers.NewHandler(regs.Verifiers, regs.Sequences, regs.Designs, auth.NewAuthenticator(cfg.MaxClockSkew, log), log)

	server, err := servers.New(cfg, metricsSrv, handler)
	if err != nil {
	    return err
	}
	server.RunInBackground()
	defer server.Shutdown()
*/
package servers
