// Package tokenstore ships the TokenStore implementations the gateway
// client delegates token persistence and exchange to.
//
// [Static] pins a fixed token and never refreshes — for tests and
// single-shot tools. [Memory] keeps an access/refresh pair in process and
// rotates it through a [RefreshFunc] delegate. [Redis] shares the pair
// across processes: a SET NX episode lock elects one rotating instance,
// a Lua compare-and-set on the stored generation publishes the new pair,
// and lock losers poll for the winner's token.
//
// # What this package must NOT do
//
//   - Decide when to refresh — the client's refresh gate owns that.
//   - Verify or inspect token contents.
package tokenstore
