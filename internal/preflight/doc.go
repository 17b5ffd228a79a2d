// Package preflight provides the checks behind `ftmodel doctor`.
//
// The package validates:
//   - The backend answers PING
//   - The RediSearch and RedisJSON modules are loaded
//   - Every configured model has its index
//   - The lock directory is writable
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New(exec, preflight.WithModels(reg.Models()...))
//	results := checker.RunAll(ctx)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
