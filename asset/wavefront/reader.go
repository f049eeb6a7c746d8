// Package wavefront reads triangle geometry from wavefront .obj files.
//
// Only vertex positions and faces are used. Polygonal faces are triangulated
// as fans. Materials, normals and texture coordinates are skipped.
package wavefront

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jimbok8/lbvh-1/asset"
	"github.com/jimbok8/lbvh-1/log"
	"github.com/jimbok8/lbvh-1/types"
)

type reader struct {
	logger log.Logger

	model *Model

	// Number of skipped statements by keyword.
	skipped map[string]int

	// An error stack that provides additional error information when
	// model files include other files via "call".
	errStack []string

	// Files currently being parsed; used to detect include cycles.
	including map[string]bool
}

func newReader(name string) *reader {
	return &reader{
		logger:    log.New("wavefront reader"),
		model:     &Model{Name: name},
		skipped:   make(map[string]int),
		errStack:  make([]string, 0),
		including: make(map[string]bool),
	}
}

// Read a model from a file path or http(s) URL.
func ReadModel(pathToModel string) (*Model, error) {
	res, err := asset.NewResource(pathToModel, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(res)
}

// Read a model from an opened resource.
func Read(res *asset.Resource) (*Model, error) {
	r := newReader(res.Path())
	r.logger.Noticef(`parsing model from "%s"`, res.Path())
	start := time.Now()

	if err := r.parse(res); err != nil {
		return nil, err
	}

	for keyword, count := range r.skipped {
		r.logger.Debugf("skipped %d unsupported %q statement(s)", count, keyword)
	}

	if len(r.model.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	r.logger.Noticef(
		"parsed %d vertices and %d faces in %d ms",
		len(r.model.Vertices), len(r.model.Faces), time.Since(start).Nanoseconds()/1e6,
	)
	return r.model, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *reader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)
	return fmt.Errorf("%s", strings.Trim(
		fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
		"\n",
	))
}

// Push a frame to the error stack.
func (r *reader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *reader) popFrame() {
	r.errStack = r.errStack[1:]
}

func (r *reader) parse(res *asset.Resource) error {
	key := resourceKey(res)
	r.including[key] = true
	defer delete(r.including, key)

	lineNum := 0

	// Positive face indices are 1-based and relative to the file that
	// declares them; included files start counting from the current offset.
	relVertexOffset := len(r.model.Vertices)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "call"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if r.including[resourceKey(incRes)] {
				incRes.Close()
				return r.emitError(res.Path(), lineNum, `include cycle: "%s" is already being read`, incRes.Path())
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))
			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.model.Vertices = append(r.model.Vertices, v)
		case "f":
			if err := r.parseFace(lineTokens, relVertexOffset); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		default:
			r.skipped[lineTokens[0]]++
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	return nil
}

// Identify a resource so that the same file reached through different
// relative paths maps to the same key.
func resourceKey(res *asset.Resource) string {
	if res.IsRemote() {
		return res.Path()
	}
	if abs, err := filepath.Abs(res.Path()); err == nil {
		return abs
	}
	return res.Path()
}

// Parse a face definition and triangulate it as a fan around its first vertex.
func (r *reader) parseFace(lineTokens []string, relVertexOffset int) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	indices := make([]uint32, len(lineTokens)-1)
	for arg := range indices {
		vTokens := strings.Split(lineTokens[arg+1], "/")
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		index, err := selectFaceCoordIndex(vTokens[0], len(r.model.Vertices), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		indices[arg] = uint32(index)
	}

	for i := 1; i+1 < len(indices); i++ {
		r.model.Faces = append(r.model.Faces, [3]uint32{indices[0], indices[i], indices[i+1]})
	}
	return nil
}

// Resolve a face coordinate token to a 0-based index. Positive indices are
// 1-based and relative to relOffset; negative indices count backwards from
// the last defined coordinate.
func selectFaceCoordIndex(token string, coordCount, relOffset int) (int, error) {
	index, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return 0, err
	}

	var out int
	switch {
	case index < 0:
		out = coordCount + int(index)
	case index > 0:
		out = relOffset + int(index) - 1
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}

	if out < 0 || out >= coordCount {
		return 0, fmt.Errorf("index out of bounds")
	}
	return out, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
