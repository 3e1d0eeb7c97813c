// Package shell runs external commands, streaming their output line by
// line while collecting it for the caller.
package shell
