// Package server provides the HTTP server hosting the registry protocol.
//
// The server is backed by Gin mounted on a ServeMux wrapped with h2c, so
// HTTP/1.1 and HTTP/2 cleartext clients share the same port. Trusted proxies
// are disabled: the remote address of the TCP connection is authoritative,
// which matters because registrants are recorded under the address they
// connect from.
//
// Typical usage:
//
//	srv := server.New(cfg, log)
//	srv.ApplyDefaults("registryd", components.HealthAll)
//	api.RegisterRoutes(srv.GinEngine(), reg, log)
//	srv.Start(ctx)
package server
