// Package utils holds small helpers shared by the resflavors packages:
// bounded string rendering for log and error messages ([TruncateString],
// [JSONToString]) and a wall-clock [Timer] for lease fetch durations.
package utils
