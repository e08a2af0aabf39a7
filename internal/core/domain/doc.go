// Package domain contains the core entities of the corpusqa pipeline.
// Entities are plain data; behaviour lives in the services and leaf
// packages that consume them.
package domain
