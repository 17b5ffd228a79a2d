// Package api serves configured models over HTTP.
//
// Routes:
//
//	GET    /health
//	GET    /models
//	GET    /models/{model}/records          paginated search
//	POST   /models/{model}/records          create
//	GET    /models/{model}/records/{id}
//	PATCH  /models/{model}/records/{id}
//	DELETE /models/{model}/records/{id}
//	POST   /models/{model}/index            drop and recreate the index
//	GET    /metrics/queries                 query telemetry snapshot
//	GET    /metrics                         Prometheus exposition
//
// Errors are written as the coded JSON produced by errors.FormatJSON.
package api
