// Package driving provides interfaces exposed to presentation layers (primary/inbound ports).
package driving
