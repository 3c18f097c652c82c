// Package discover finds the solution and mesh files a HORSES3D run wrote,
// based on the "solution file name" given in its control file.
package discover

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/horses3d/hpost/lib/control"
	"github.com/horses3d/hpost/lib/snapio"
)

// ErrNotFound is returned when no file matches a discovery pattern.
var ErrNotFound = errors.New("no matching files")

const (
	SolutionExt = ".hsol"
	MeshExt     = ".hmesh"
	// MeshDir is the directory, relative to the run root, meshes go in.
	MeshDir = "MESH"
)

// SolutionBase splits a "solution file name" such as "RESULTS/Cyl.hsol"
// into its directory and its base name without extension.
func SolutionBase(name string) (dir, base string) {
	dir, file := filepath.Split(name)
	dir = filepath.Clean(dir)
	return dir, strings.TrimSuffix(file, filepath.Ext(file))
}

// Solutions returns every solution file of the run described by ctrl, in
// lexical order. Paths are relative to the run root if the control file
// gives a relative solution name.
func Solutions(ctrl *control.Control) ([]string, error) {
	name, err := ctrl.SolutionFileName()
	if err != nil {
		return nil, err
	}
	dir, base := SolutionBase(name)
	return glob(filepath.Join(dir, base+"_*"+SolutionExt))
}

// Meshes returns every mesh file of the run described by ctrl under root.
func Meshes(ctrl *control.Control, root string) ([]string, error) {
	name, err := ctrl.SolutionFileName()
	if err != nil {
		return nil, err
	}
	_, base := SolutionBase(name)
	return glob(filepath.Join(root, MeshDir, base+"_*"+MeshExt))
}

// glob matches pattern and its compressed variants. When a file exists in
// more than one form only the first of plain, zstd and gzip is kept.
func glob(pattern string) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, ext := range []string{"", snapio.ZstdExt, snapio.GzipExt} {
		matches, err := filepath.Glob(pattern + ext)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			key := snapio.TrimCompression(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: nothing matches %s", ErrNotFound, pattern)
	}

	sort.Slice(out, func(i, j int) bool {
		return snapio.TrimCompression(out[i]) < snapio.TrimCompression(out[j])
	})
	return out, nil
}
