package metadata

import "footage-archive/internal/mediatypes"

// CSV headers read from the export.
const (
	ColFileName      = "File Name"
	ColClipDirectory = "Clip Directory"
	ColDurationTC    = "Duration TC"
	ColFrameRate     = "Shot Frame Rate"
	ColResolution    = "Resolution"
	ColKeywords      = "Keywords"
)

// requiredColumns must be present in the header row.
var requiredColumns = []string{
	ColFileName,
	ColClipDirectory,
	ColDurationTC,
	ColFrameRate,
	ColResolution,
	ColKeywords,
}

type detailColumn struct {
	header string
	set    func(d *mediatypes.FileDetails, v string)
}

// detailColumns maps export headers onto FileDetails fields.
var detailColumns = []detailColumn{
	{ColDurationTC, func(d *mediatypes.FileDetails, v string) { d.DurationTC = v }},
	{ColFrameRate, func(d *mediatypes.FileDetails, v string) { d.FrameRateVerbose = v }},
	{"Audio Sample Rate", func(d *mediatypes.FileDetails, v string) { d.AudioSampleRate = v }},
	{"Audio Channels", func(d *mediatypes.FileDetails, v string) { d.AudioChannels = v }},
	{ColResolution, func(d *mediatypes.FileDetails, v string) { d.Resolution = v }},
	{"Video Codec", func(d *mediatypes.FileDetails, v string) { d.VideoCodec = v }},
	{"Audio Codec", func(d *mediatypes.FileDetails, v string) { d.AudioCodec = v }},
	{"Description", func(d *mediatypes.FileDetails, v string) { d.Description = v }},
	{"Shot", func(d *mediatypes.FileDetails, v string) { d.Shot = v }},
	{"Scene", func(d *mediatypes.FileDetails, v string) { d.Scene = v }},
	{"Take", func(d *mediatypes.FileDetails, v string) { d.Take = v }},
	{"Angle", func(d *mediatypes.FileDetails, v string) { d.Angle = v }},
	{"Move", func(d *mediatypes.FileDetails, v string) { d.Move = v }},
	{"Shot Type", func(d *mediatypes.FileDetails, v string) { d.ShotType = v }},
	{"Date Recorded", func(d *mediatypes.FileDetails, v string) { d.RecordedAt = v }},
	{"Bit Depth", func(d *mediatypes.FileDetails, v string) { d.BitDepth = v }},
	{"Audio Bit Depth", func(d *mediatypes.FileDetails, v string) { d.AudioBitDepth = v }},
	{"Date Modified", func(d *mediatypes.FileDetails, v string) { d.LastModifiedAt = v }},
}
