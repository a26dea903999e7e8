// Package bootstrap orchestrates application lifecycle.
//
// It ties together typed configuration, the component registry, and
// startup/shutdown hooks so a service entrypoint stays small:
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(regComponent)
//	app.RegisterComponent(serverComponent)
//	if err := app.Run(ctx); err != nil {
//	    os.Exit(1)
//	}
//
// Run starts components in registration order, waits for SIGINT/SIGTERM,
// then stops them in reverse order within the graceful timeout.
package bootstrap
