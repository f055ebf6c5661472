package store

// The following are bolt buckets.
const (
	bucketCmd     = "cmd"
	bucketSession = "session"
)
