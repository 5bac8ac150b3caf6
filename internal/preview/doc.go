// Package preview builds clip preview strips: a handful of still frames taken
// from a video and laid out left to right on a black background.
//
// Generation runs in three steps:
//
//  1. SelectKeyframeTimestamps picks up to five timestamps clear of the clip's
//     first and last second.
//  2. A FrameExtractor (ffmpeg in production) writes one scaled JPEG still per
//     timestamp into the work directory.
//  3. Compose pastes the stills side by side with a fixed gutter, and the
//     result is JPEG-encoded into a mediatypes.ClipPreview.
//
// Intermediate stills are always removed before Generate returns.
//
// Durations come either from an imported timecode (ParseTimecode) or from a
// Prober (ffprobe in production). A probe that yields no usable duration
// returns ErrNoDuration and the caller skips the file.
package preview
