/*
Package session implements document session management and persistence orchestration.

It serializes access to each document across goroutines and, with a distributed
locker, across replicas, in front of a long-term DocumentStore.
*/
package session
