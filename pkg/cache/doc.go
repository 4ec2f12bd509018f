// Package cache provides the content-addressed cache behind the pipeline.
//
// Charts and rendered artifacts are pure functions of the graph payload and
// the options, so they are keyed by a hash of both ([Keyer]) and can be
// reused across runs, processes and hosts.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default).
//   - [NullCache]: stores nothing (--no-cache).
//   - [RedisCache]: shared cache for several server instances.
//   - [MongoCache]: shared cache with a TTL index.
//
// [Open] selects a backend by name, as configured in the [cache] section of
// the config file. Instances sharing a Redis or MongoDB backend keep their
// entries apart with a [ScopedKeyer] built from the configured prefix.
package cache
