// Package api exposes the registry protocol over HTTP.
//
// The route table is fixed:
//
//	PUT    /registry/{name}/{version}/{port}  register
//	PATCH  /registry/{name}/{version}/{port}  keep-alive
//	DELETE /registry/{name}/{version}/{port}  deregister
//	GET    /registry/{name}/{version}         resolve
//	GET    /registry                          list all clusters
//
// Any other path or verb yields 400 with {"message": "Invalid request format"}.
//
// The address recorded for register, keep-alive, and deregister is the source
// address of the connection, never a client-supplied value.
package api
