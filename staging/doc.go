// Package staging provides a growable byte buffer with a linear layout and
// the same write-head/commit/read-head/consume contract as the mirrored
// ring. Because nothing is mirrored it works with any memory source: the
// default Go heap, an injected api.Allocator, or memory adopted from the
// caller together with a deleter.
//
// A write that needs more contiguous room than the trailing free space goes
// through Prepare, which compacts unread bytes to the front of the storage
// or grows the storage through the allocator.
//
// A Buffer is not safe for concurrent use.
package staging
