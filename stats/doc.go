// Package stats tracks the work done by add and delete operations on
// unlearning trees and exports it.
package stats
