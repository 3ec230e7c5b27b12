// Package redis implements the Redis-backed result cache.
//
// Correlation analyses are memoized under a fingerprint of the request
// parameters with a TTL; concurrent identical requests are collapsed
// into one computation via singleflight. The cache is strictly
// best-effort: Redis being down degrades to computing every request.
package redis
