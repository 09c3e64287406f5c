// Package state implements persistence for relayed alert states.
//
// Each subject has one record. The FileRepository keeps all records in a JSON
// file on disk and the RedisRepository keeps them in a Redis hash. Both expose
// the Repository interface that the relay service depends on.
package state
