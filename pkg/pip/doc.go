// Package pip locates a working pip installation and runs install and
// uninstall commands through it.
package pip
