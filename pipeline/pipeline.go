// Package pipeline sequences a full hierarchy check: load a model, build a
// hierarchy over its faces, validate it and trace a smoke-test frame
// through it.
package pipeline

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jimbok8/lbvh-1/asset/compiler/lbvh"
	"github.com/jimbok8/lbvh-1/asset/compiler/sah"
	"github.com/jimbok8/lbvh-1/asset/wavefront"
	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/jimbok8/lbvh-1/bvh/validate"
	"github.com/jimbok8/lbvh-1/log"
	"github.com/jimbok8/lbvh-1/renderer"
	"github.com/olekukonko/tablewriter"
)

// The steps executed by a pipeline run, in order.
const (
	StepLoad     = "load"
	StepBuild    = "build"
	StepTopology = "topology"
	StepVolumes  = "volumes"
	StepRender   = "render"
)

// StepResult records the outcome of a single step.
type StepResult struct {
	Step     string
	Status   Status
	Duration time.Duration
	Detail   string
	Err      error
}

// Report collects the outcome of a pipeline run.
type Report struct {
	Steps []StepResult

	// The most severe step status.
	Status Status

	// Validation findings. Containment is only populated if the topology
	// check passed.
	Validation validate.Result

	// Smoke-test render statistics, if the render step ran.
	Frame *renderer.FrameStats
}

// Err returns the error of the first step that did not succeed or nil if
// the run was successful.
func (r *Report) Err() error {
	for _, step := range r.Steps {
		if step.Status >= StatusViolation {
			return step.Err
		}
	}
	return nil
}

// Build a tabular summary of all executed steps.
func (r *Report) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Step", "Status", "Time", "Details"})
	for _, step := range r.Steps {
		table.Append([]string{step.Step, step.Status.String(), step.Duration.String(), step.Detail})
	}
	table.SetFooter([]string{"", "OVERALL", r.Status.String(), ""})

	table.Render()
	return buf.String()
}

// A ModelLoader reads a model from a path or URL.
type ModelLoader func(path string) (*wavefront.Model, error)

// Pipeline runs the check described by its Config. The loader and builder
// can be replaced to check hierarchies from other sources.
type Pipeline struct {
	logger log.Logger

	cfg   Config
	Load  ModelLoader
	Build bvh.Builder
}

// Create a pipeline that loads wavefront models and builds hierarchies with
// the builder selected by the config.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		logger: log.New("pipeline"),
		cfg:    cfg,
		Load:   wavefront.ReadModel,
		Build:  lbvh.Build,
	}
	if cfg.Builder == BuilderSAH {
		p.Build = sah.Build
	}
	return p
}

// Run executes all steps. Under fail-fast mode the first violation halts
// the run. Otherwise a topology violation skips the volume check and the
// render, as child references cannot be trusted; containment violations
// still allow the render to run.
func (p *Pipeline) Run() *Report {
	rep := &Report{}
	defer func() {
		statuses := make([]Status, len(rep.Steps))
		for i, step := range rep.Steps {
			statuses[i] = step.Status
		}
		rep.Status = Worst(statuses...)
	}()

	mode := p.cfg.Mode()
	workers := p.cfg.WorkerCount()

	// Load
	p.logger.Noticef("loading model: %s", p.cfg.ModelPath)
	start := time.Now()
	model, err := p.Load(p.cfg.ModelPath)
	if err != nil {
		rep.add(StepResult{Step: StepLoad, Status: StatusFailed, Duration: time.Since(start), Detail: err.Error(), Err: err})
		return rep
	}
	rep.add(StepResult{
		Step:     StepLoad,
		Duration: time.Since(start),
		Detail:   fmt.Sprintf("%d vertices, %d faces", len(model.Vertices), model.FaceCount()),
	})

	// Build
	p.logger.Noticef("building %s hierarchy with %d worker(s)", p.cfg.Builder, workers)
	start = time.Now()
	handles := model.FaceIndices()
	h := p.Build(handles, model.FaceBBox, workers)
	rep.add(StepResult{
		Step:     StepBuild,
		Duration: time.Since(start),
		Detail:   fmt.Sprintf("%d internal nodes", len(h)),
	})
	p.logger.Noticef("completed in %6.03f ms", float64(time.Since(start).Microseconds())/1000.0)
	p.logger.Infof("hierarchy information:\n%s", h.Stats())

	// Topology
	p.logger.Noticef("checking hierarchy (%s)", mode)
	rep.Validation.Mode = mode
	start = time.Now()
	rep.Validation.Topology = validate.CheckTopology(h, mode)
	if n := len(rep.Validation.Topology); n != 0 {
		for _, verr := range rep.Validation.Topology {
			p.logger.Error(verr.Error())
		}
		rep.add(StepResult{
			Step:     StepTopology,
			Status:   StatusViolation,
			Duration: time.Since(start),
			Detail:   fmt.Sprintf("%d violation(s)", n),
			Err:      fmt.Errorf("%w: %v", ErrTopology, rep.Validation.Topology[0]),
		})
		if mode == validate.FailFast {
			return rep
		}
		rep.add(StepResult{Step: StepVolumes, Status: StatusSkipped, Detail: "topology is invalid"})
		rep.add(StepResult{Step: StepRender, Status: StatusSkipped, Detail: "topology is invalid"})
		return rep
	}
	rep.add(StepResult{Step: StepTopology, Duration: time.Since(start)})

	// Volumes
	start = time.Now()
	rep.Validation.VolumesChecked = true
	rep.Validation.Containment = validate.CheckVolumes(h, mode)
	if n := len(rep.Validation.Containment); n != 0 {
		for _, verr := range rep.Validation.Containment {
			p.logger.Error(verr.Error())
		}
		rep.add(StepResult{
			Step:     StepVolumes,
			Status:   StatusViolation,
			Duration: time.Since(start),
			Detail:   fmt.Sprintf("%d violation(s)", n),
			Err:      fmt.Errorf("%w: %v", ErrContainment, rep.Validation.Containment[0]),
		})
		if mode == validate.FailFast {
			return rep
		}
	} else {
		rep.add(StepResult{Step: StepVolumes, Duration: time.Since(start)})
		p.logger.Notice("hierarchy is valid")
	}

	// Render
	if p.cfg.SkipRender {
		rep.add(StepResult{Step: StepRender, Status: StatusSkipped, Detail: "disabled"})
		return rep
	}
	rep.add(p.render(rep, model, h, handles, workers))
	return rep
}

func (p *Pipeline) render(rep *Report, model *wavefront.Model, h bvh.Hierarchy, handles []uint32, workers int) StepResult {
	opts := renderer.DefaultOptions()
	opts.FrameW, opts.FrameH = p.cfg.FrameW, p.cfg.FrameH
	opts.Workers = workers
	opts.FitCamera(model.Bounds())

	start := time.Now()
	frame, stats, err := renderer.Render(h, handles, renderer.NewModelIntersector(model), opts)
	if err != nil {
		return StepResult{Step: StepRender, Status: StatusFailed, Duration: time.Since(start), Detail: err.Error(), Err: err}
	}
	rep.Frame = &stats
	p.logger.Infof("frame statistics\n%s", stats.Table())

	detail := fmt.Sprintf("%dx%d, %d hits", opts.FrameW, opts.FrameH, stats.Hits)
	if p.cfg.FrameOut != "" {
		if err := renderer.SaveFrame(frame, p.cfg.FrameOut); err != nil {
			return StepResult{Step: StepRender, Status: StatusFailed, Duration: time.Since(start), Detail: err.Error(), Err: err}
		}
		detail += ", saved to " + p.cfg.FrameOut
	}

	return StepResult{Step: StepRender, Duration: time.Since(start), Detail: detail}
}

func (r *Report) add(step StepResult) {
	r.Steps = append(r.Steps, step)
}
