/*
Package typeset serializes math rendering.

A Queue runs at most one Task at a time, in submission order. A Service builds
typeset tasks on top of a Queue: a request whose surface is attached calls the
Typesetter once and reports the outcome; a request whose surface is detached
releases its slot immediately and is resubmitted to the back of the queue
after the retry delay, until the surface attaches, the request context is
cancelled, or the optional attempt budget runs out.
*/
package typeset
