// Package output serializes pipeline reports and writes them to stdout or
// files. Report formats are pluggable through a [Registry].
package output
