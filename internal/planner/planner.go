package planner

import (
	"github.com/backmassage/vidsheet/internal/config"
	"github.com/backmassage/vidsheet/internal/ffmpeg"
	"github.com/backmassage/vidsheet/internal/probe"
)

// BuildPlan produces the complete Plan for one file from config and probe
// data. The pipeline calls it once per job after a successful probe.
//
// Flow:
//  1. Sample Columns*Rows timestamps inside the margins
//  2. Size the grid from the sheet width and the displayed aspect ratio
func BuildPlan(cfg *config.Config, md *probe.Metadata, input, output string, bands Bands) *Plan {
	plan := &Plan{
		InputPath:  input,
		OutputPath: output,
		Meta:       md,
	}

	// --- 1. Timestamps ---
	ts := Timestamps(md.Duration, cfg.Slots(), cfg.MarginFraction)
	plan.Slots = make([]Slot, len(ts))
	for i, t := range ts {
		plan.Slots[i] = Slot{Index: i, Timestamp: t}
	}

	// --- 2. Layout ---
	w, h := md.DisplaySize()
	plan.Layout = NewLayout(cfg, w, h, bands)
	return plan
}

// FrameRequests returns one extraction request per slot, each asking ffmpeg
// to fit the frame inside the cell.
func (p *Plan) FrameRequests(workDir string) []ffmpeg.FrameRequest {
	stream := 0
	if p.Meta != nil {
		stream = p.Meta.Stream
	}
	reqs := make([]ffmpeg.FrameRequest, len(p.Slots))
	for i, s := range p.Slots {
		reqs[i] = ffmpeg.FrameRequest{
			Input:     p.InputPath,
			Index:     s.Index,
			Stream:    stream,
			Timestamp: s.Timestamp,
			Width:     p.Layout.CellWidth,
			Height:    p.Layout.CellHeight,
			WorkDir:   workDir,
		}
	}
	return reqs
}
