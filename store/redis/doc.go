// Package redisstore keeps gateway activity history in Redis.
//
// Entries are stored as JSON in a hash and indexed by a sorted set scored by
// creation time in microseconds, so time-range reads and retention pruning
// never scan the full history.
package redisstore
