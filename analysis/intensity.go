package analysis

import (
	"context"

	"github.com/xezoless/echosm/response"
)

// Intensity estimates each transcript character's loudness. The waveform
// is decoded, transcribed, stripped of silence, then segmented so that
// every non-space character owns one interval; the interval's RMS level in
// dB is the character's volume. Spaces report the silence floor.
func (p *Pipeline) Intensity(ctx context.Context, audioPath string) any {
	data, transcript, spoken, errResp := p.loadAndTranscribe(ctx, audioPath)
	if errResp != nil {
		return errResp
	}

	alignment, err := p.intensityEngine.Segment(spoken, data.SampleRate, transcript)
	if err != nil {
		return errorEnvelope(err)
	}

	volumes := make([]response.CharVolume, len(alignment.Segments))
	for i, seg := range alignment.Segments {
		vol := p.intensityEngine.Params().SilenceFloorDB
		if seg.VolumeDB.Valid {
			vol = seg.VolumeDB.Value
		}
		volumes[i] = response.CharVolume{
			Char:   seg.Char,
			Volume: round(vol, 2),
		}
	}

	return &response.Intensity{
		Status:      response.StatusSuccess,
		CharVolumes: volumes,
	}
}
