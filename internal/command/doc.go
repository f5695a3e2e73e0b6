// Package command implements the per-device command queue.
//
// Operators enqueue upper-cased text commands; devices receive them on their
// next poll via an atomic drain that marks each row sent exactly once.
// Acknowledgments come back as echoed text, not IDs, so the package also
// provides the heuristic matcher that correlates an ack against the window of
// recently sent commands.
package command
