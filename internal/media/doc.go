// Package media answers the two questions the conversion engine asks before a
// batch starts: how long is each input, and which H.264 encoder should be
// used.
//
// Durations come from ffprobe (see the ffprobe subpackage). Encoder choice
// inspects "ffmpeg -encoders" once and prefers NVENC, then AMF, then QSV,
// falling back to libx264. Neither probe fails the caller: an unknown
// duration is reported as not ok and an encoder probe failure selects the
// software encoder.
package media
