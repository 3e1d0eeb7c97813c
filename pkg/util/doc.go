// Package util provides small string helpers shared across kitir packages:
// SafeFileName turns arbitrary text into a single path element and Prefix
// cuts previews for trace logs.
package util
