// Package prebuilt provides ready-made node specs for common task shapes:
// arithmetic nodes, gather nodes with dynamic inputs and control zones. Each
// constructor returns a fresh spec, and RegisterAll wires the whole catalog
// into a registry so the specs resolve by identifier when graphs are loaded.
package prebuilt
