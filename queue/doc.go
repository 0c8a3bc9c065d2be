/*
Package queue defines the tasks performed to grow a subtree of a decision
tree and an interface for a Queue to hand them to growth workers.

It also provides an in-memory FIFO implementation of the Queue interface.
*/
package queue
