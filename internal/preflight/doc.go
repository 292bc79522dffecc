// Package preflight provides readiness checks for the binaries, directories
// and mask catalog kartvid depends on.
//
// The `kartvid check` command runs RunAll and renders every Result; the
// video command calls CheckSystemDeps before spawning ffmpeg so a missing
// binary fails fast with a clear message.
package preflight
