// Package profile manages dotkeep's named profiles and the resolution
// context: which profile and machine identity a command invocation runs
// under. The context is computed once per invocation and treated as
// immutable afterwards.
package profile
