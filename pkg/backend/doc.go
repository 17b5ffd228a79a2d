// Package backend executes commands against the search backend.
//
// The core packages (schema, query, record) depend only on [Executor], a
// single method that sends one command with positional string arguments
// and returns the raw reply. [RedisExecutor] is the production adapter
// over go-redis, pinned to RESP2 so FT.SEARCH replies keep their flat
// array shape.
//
// # Errors
//
// Adapter failures are classified into coded errors:
//
//   - ERR_301_NETWORK_TIMEOUT and ERR_302_NETWORK_UNAVAILABLE for transport
//     failures (retryable)
//   - ERR_305_INDEX_NOT_FOUND when the backend reports an unknown index
//   - ERR_304_BACKEND_COMMAND for any other error reply
//
// Retries and circuit breaking happen here and nowhere else.
package backend
