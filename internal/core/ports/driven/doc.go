// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The core pipeline depends on these
// contracts, never on concrete providers.
package driven
