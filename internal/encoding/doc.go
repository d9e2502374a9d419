// Package encoding runs batch conversions through ffmpeg.
//
// Every operation (ToMP4, Compress, ConvertImage) implements Job: Run takes
// the cancellation context, the ordered inputs, and a Sink that receives one
// overall percentage plus overwrite questions, and returns a BatchResult with
// an explicit outcome per file. Video jobs probe the encoder once, weight each
// file by its duration, and parse ffmpeg's time= progress; image jobs resolve
// conflicts up front and then convert on a bounded worker pool with count
// weighting. Per-file failures never stop a batch; cancellation terminates
// the in-flight ffmpeg, removes its partial output, and marks the rest of the
// batch cancelled.
package encoding
