// Package internal contains helper packages that are intentionally private
// to goGate.
//
// # Sub-packages
//
//   - refreshgate — single-flight refresh episodes (leader election + caller queuing)
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGate API.
//   - Be imported by any package outside the goGate module.
package internal
