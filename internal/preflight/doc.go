// Package preflight provides readiness checks for the filesystem paths,
// manifest, and remote hosts that vogsdemo depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs every failure before it
//     begins serving.
//   - The CLI "vogsdemo preflight" command renders the same results as a
//     table, exiting non-zero when any check fails.
//
// Remote host checks are skipped when the corresponding base URL is unset.
package preflight
