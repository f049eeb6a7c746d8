// Package renderer traces primary rays through a hierarchy to produce a
// smoke-test frame. Each pixel encodes the barycentric coordinates of the
// closest hit, which makes broken traversal easy to spot.
package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/log"
	"github.com/jimbok8/lbvh-1/tracer"
	"github.com/jimbok8/lbvh-1/types"
)

var logger = log.New("renderer")

// Render traces one primary ray per pixel and returns the frame together
// with per-worker statistics. Row bands are split across opts.Workers
// workers; each worker writes only to its own rows.
func Render(h bvh.Hierarchy, handles []uint32, isect Intersector, opts Options) (*image.RGBA, FrameStats, error) {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, FrameStats{}, ErrInvalidFrame
	}
	if len(handles) == 0 {
		return nil, FrameStats{}, ErrEmptyScene
	}

	frame := image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH)))
	traverser := NewTraverser(h, handles)
	sch := tracer.NewScheduler(opts.Workers)
	workerStats := make([]WorkerStat, sch.Workers())

	start := time.Now()
	sch.Run(func(div tracer.WorkDivision, _ ...interface{}) {
		blockStart := time.Now()
		begin, end := div.Range(int(opts.FrameH))

		stat := WorkerStat{Index: div.Index, BlockY: uint32(begin), BlockH: uint32(end - begin)}
		for y := begin; y < end; y++ {
			for x := 0; x < int(opts.FrameW); x++ {
				hit := traverser.Trace(primaryRay(opts, x, y), isect)
				if hit.Hit() {
					stat.Hits++
				}
				frame.SetRGBA(x, y, shade(hit))
			}
		}
		stat.RenderTime = time.Since(blockStart)
		workerStats[div.Index] = stat
	})

	stats := FrameStats{
		Workers:    workerStats,
		Rays:       uint64(opts.FrameW) * uint64(opts.FrameH),
		RenderTime: time.Since(start),
	}
	for _, stat := range workerStats {
		stats.Hits += stat.Hits
	}

	logger.Infof("rendered %dx%d frame in %d ms", opts.FrameW, opts.FrameH, stats.RenderTime.Nanoseconds()/1e6)
	return frame, stats, nil
}

// Generate the primary ray through the center of pixel (x, y).
func primaryRay(opts Options, x, y int) types.Ray {
	aspect := float32(opts.FrameW) / float32(opts.FrameH)
	xNdc := 2*(float32(x)+0.5)/float32(opts.FrameW) - 1
	yNdc := -(2*(float32(y)+0.5)/float32(opts.FrameH) - 1)

	dir := types.XYZ(xNdc*aspect*opts.FOV, yNdc*opts.FOV, -1)
	return types.NewRay(opts.Eye, dir)
}

// Map an intersection to a pixel color.
func shade(hit Intersection) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(hit.U) * 255),
		G: uint8(clamp01(hit.V) * 255),
		B: 127,
		A: 255,
	}
}

func clamp01(f float32) float32 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Encode the frame as a PNG image.
func SaveFrame(frame image.Image, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}

	start := time.Now()
	if err = png.Encode(f, frame); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)
	return nil
}
