// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path diagnostic logging helper
//
// Purpose:
//   - Logs infrequent error and diagnostic paths: startup and run failures.
//   - Never called from inside a measured repetition.
//
// Notes:
//   - Avoids fmt.Sprintf; each line is built by plain string concatenation
//     and written straight to stderr.
//
// ⚠️ Never invoke on the measured path — use only in failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "ccbench/utils"

// DropError writes prefix and err as one line directly to stderr, without
// going through fmt or the log package.
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		msg := prefix + ": " + err.Error() + "\n"
		utils.PrintWarning(msg)
	} else {
		msg := prefix + "\n"
		utils.PrintWarning(msg)
	}
}

// DropMessage writes prefix and message as one line directly to stderr,
// without going through fmt or the log package.
//
//go:nosplit
//go:inline
func DropMessage(prefix, message string) {
	msg := prefix + ": " + message + "\n"
	utils.PrintWarning(msg)
}
