// Package pipe connects a producer and a consumer goroutine through a
// mirrored ring with io.Pipe semantics: Write blocks while the ring is full,
// Read blocks while it is empty, and either half may close the pipe.
//
// Reader.WriteTo and Writer.ReadFrom pass ring spans straight to the
// destination or source, so io.Copy through a pipe never copies through an
// intermediate buffer. Because the ring is mirrored every span is
// contiguous, even across its physical end.
package pipe
