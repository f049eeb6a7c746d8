package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

type WorkerStat struct {
	// The worker's division index.
	Index int

	// The first row and number of rows traced by this worker.
	BlockY uint32
	BlockH uint32

	// The number of primary rays that hit a primitive.
	Hits uint64

	// Render time for the assigned block.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Total number of traced rays and hits.
	Rays uint64
	Hits uint64

	// Total render time for entire frame.
	RenderTime time.Duration
}

// Build a tabular representation of the frame statistics.
func (fs FrameStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Block Y", "Block height", "Hits", "Render time"})
	for _, stat := range fs.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Index),
			fmt.Sprintf("%d", stat.BlockY),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%d", stat.Hits),
			stat.RenderTime.String(),
		})
	}

	hitPercent := 0.0
	if fs.Rays != 0 {
		hitPercent = 100 * float64(fs.Hits) / float64(fs.Rays)
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%02.1f %%", hitPercent), fs.RenderTime.String()})

	table.Render()
	return buf.String()
}
