package preview

import (
	"fmt"
	"regexp"
	"strconv"

	"footage-archive/internal/mediatypes"
)

// Keyframe selection defaults.
const (
	DefaultKeyframePadding = 1
	DefaultMaxKeyframes    = 5
)

var timecodePattern = regexp.MustCompile(`^\s*([0-9]{2,}):([0-9]{2}):([0-9]{2})(?:[.;:,]([0-9]{2,3}))?\s*$`)

// SelectKeyframeTimestamps returns between 1 and maxKeyframes ascending
// HH:MM:SS timestamps for a clip of the given duration in seconds.
//
// Clips of at least 3*padding seconds get timestamps evenly spaced strictly
// inside [padding, duration-padding]. Clips of at least 2*padding get a single
// timestamp at padding. Anything shorter gets 00:00:00.
func SelectKeyframeTimestamps(durationSeconds, padding, maxKeyframes int) []string {
	if maxKeyframes < 1 {
		maxKeyframes = 1
	}
	if padding < 0 {
		padding = 0
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	switch {
	case durationSeconds >= padding*3:
		lo, hi := padding, durationSeconds-padding
		span := hi - lo

		seconds := make([]int, 0, maxKeyframes)
		last := -1
		for k := 1; k <= maxKeyframes; k++ {
			s := lo + k*span/(maxKeyframes+1)
			if s < lo || s > hi || s == last {
				continue
			}
			seconds = append(seconds, s)
			last = s
		}

		out := make([]string, len(seconds))
		for i, s := range seconds {
			out[i] = FormatTimecode(s)
		}
		return out
	case durationSeconds >= padding*2:
		return []string{FormatTimecode(padding)}
	default:
		return []string{FormatTimecode(0)}
	}
}

// FormatTimecode renders seconds as HH:MM:SS.
func FormatTimecode(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ParseTimecode converts HH:MM:SS[.;:,FF] to whole seconds. The frame
// component is discarded.
func ParseTimecode(tc string) (int, error) {
	m := timecodePattern.FindStringSubmatch(tc)
	if m == nil {
		return 0, fmt.Errorf("timecode %q: %w", tc, mediatypes.ErrParse)
	}

	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	secs, _ := strconv.Atoi(m[3])
	if mins > 59 || secs > 59 {
		return 0, fmt.Errorf("timecode %q out of range: %w", tc, mediatypes.ErrParse)
	}

	return h*3600 + mins*60 + secs, nil
}

// InputFromTimecode builds a generator input from an imported duration
// timecode.
func InputFromTimecode(contentHash, filePath, tc string) (mediatypes.FFmpegInput, error) {
	seconds, err := ParseTimecode(tc)
	if err != nil {
		return mediatypes.FFmpegInput{}, err
	}
	return mediatypes.FFmpegInput{
		ContentHash:     contentHash,
		FilePath:        filePath,
		DurationSeconds: seconds,
	}, nil
}
