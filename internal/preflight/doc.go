// Package preflight provides readiness checks for the filesystem paths
// and external commands the conversion gateway depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs failures. Failures are
//     advisory; backend availability already gates what the gateway
//     offers, so a failed check never stops the process.
//   - The CLI "onnxgate status" command displays the same results.
package preflight
