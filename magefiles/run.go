//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the clear-screen example.
func (Run) Clearscreen() error {
	return runExample("clearscreen")
}

// Runs the triangle example.
func (Run) Triangle() error {
	return runExample("triangle")
}

// Runs the textured quad example.
func (Run) Quad() error {
	return runExample("quad")
}

// Runs the cube field example.
func (Run) Cubefield() error {
	return runExample("cubefield")
}

func runExample(name string) error {
	if err := (Build{}).Shaders(); err != nil {
		return err
	}
	fmt.Printf("Run %s...\n", name)
	if _, err := executeCmd("go", withArgs("run", "./examples/"+name), withStream()); err != nil {
		return err
	}
	return nil
}
