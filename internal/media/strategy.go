package media

// MergeStrategy selects how a video track and an audio track of differing
// lengths are combined.
type MergeStrategy string

const (
	// StrategySimpleCopy muxes both streams without re-encoding. Used when
	// the durations already match within tolerance.
	StrategySimpleCopy MergeStrategy = "simple_copy"
	// StrategyLoopVideo loops the video until the audio ends. Used when
	// the audio is longer than the video.
	StrategyLoopVideo MergeStrategy = "loop_video"
	// StrategyTrimToAudio re-encodes and cuts the video at the audio's
	// end. Used when the video is longer than the audio.
	StrategyTrimToAudio MergeStrategy = "trim_to_audio"
)

// DefaultDurationTolerance is the duration difference, in seconds, below
// which the streams are considered equal in length.
const DefaultDurationTolerance = 0.5

// SelectStrategy picks the merge strategy for the given video and audio
// durations. Only a difference strictly below the tolerance counts as a
// match; at exactly the tolerance the longer stream decides.
func SelectStrategy(videoSec, audioSec, tolerance float64) MergeStrategy {
	diff := videoSec - audioSec
	if diff < 0 {
		diff = -diff
	}
	if diff < tolerance {
		return StrategySimpleCopy
	}
	if audioSec > videoSec {
		return StrategyLoopVideo
	}
	return StrategyTrimToAudio
}
