// Package cache provides bounded, concurrency-safe LRU caches.
//
// LRU is a single-lock cache suited to small working sets such as rendered
// empty tiles. Sharded spreads keys across independent LRU shards so hot
// paths like coordinate projection avoid contending on one mutex.
package cache
