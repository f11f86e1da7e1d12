// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/emer/spikegen/model"
	"github.com/emer/spikegen/prefs"
)

// ArtifactFormat is the semantic version of the artifact layout written by
// this package.  Cached artifacts with a different major version are
// regenerated.
const ArtifactFormat = "v1.0.0"

// Request is what a Generator is asked to build
type Request struct {

	// cache key of the build
	Key Key

	// model to generate code for
	Model model.Description

	// preferences, a private clone that the generator must not retain
	Prefs prefs.Preferences

	// name of the target backend
	Target string

	// directory in which to write the artifact
	Dir string
}

// Artifact is the result of a generation
type Artifact struct {

	// location of the artifact
	Path string

	// size of the artifact in bytes
	Size int64

	// format version, as a semantic version
	Format string
}

// Generator produces the artifact for a request
type Generator interface {
	Generate(ctx context.Context, req Request) (Artifact, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, req Request) (Artifact, error)

func (gf GeneratorFunc) Generate(ctx context.Context, req Request) (Artifact, error) {
	return gf(ctx, req)
}

// FileGenerator writes a build description: the model and preference
// descriptions and the compiler flags the preferences select.
// It stands in for the external code generator and compiler.
type FileGenerator struct{}

// compilerFlags returns the compiler flags selected by pf
func compilerFlags(pf prefs.Preferences) []string {
	switch pf := pf.(type) {
	case *prefs.ISPC:
		return pf.CompilerFlags()
	case *prefs.CUDA:
		flags := []string{"-arch=" + pf.TargetISA}
		if pf.GenerateLineInfo {
			flags = append(flags, "-lineinfo")
		}
		return append(flags, pf.UserNvccFlags...)
	case *prefs.SingleThreadedCPU:
		return pf.UserCxxFlags
	}
	return nil
}

// ArtifactName returns the file name of the artifact for key
func ArtifactName(md model.Description, pf prefs.Preferences, key Key) string {
	nm := "runner"
	if pf.AsBase().IncludeModelNameInDLL {
		nm += "_" + md.Name()
	}
	return fmt.Sprintf("%s%s_%s_%s.txt", nm, key.ImportSuffix, key.ModelDigest.String()[:12], key.PrefsDigest.String()[:12])
}

func (fg FileGenerator) Generate(ctx context.Context, req Request) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if err := os.MkdirAll(req.Dir, 0755); err != nil {
		return Artifact{}, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "format=%s\ntarget=%s\nkey=%v\n", ArtifactFormat, req.Target, req.Key)
	fmt.Fprintf(&b, "flags=%q\n", compilerFlags(req.Prefs))
	b.WriteString(req.Model.Describe())
	b.WriteString(req.Prefs.Describe())
	path := filepath.Join(req.Dir, ArtifactName(req.Model, req.Prefs, req.Key))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return Artifact{}, err
	}
	return Artifact{Path: path, Size: int64(b.Len()), Format: ArtifactFormat}, nil
}
