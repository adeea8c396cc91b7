//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{
	"triangle.vert", "triangle.frag",
	"quad.vert", "quad.frag",
	"cube.vert", "cube.frag",
}

// Compiles every example shader to SPIR-V with glslc.
func (Build) Shaders() error {
	for _, src := range shaderSources {
		in := filepath.Join("assets", "shaders", src)
		out := in + ".spv"
		if _, err := executeCmd("glslc", withArgs(in, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Builds all four example binaries.
func (Build) Examples() error {
	if _, err := executeCmd("go", withArgs("build", "./examples/..."), withStream()); err != nil {
		return err
	}
	return nil
}
