//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bookletgen"

var Default = Build

// Build compiles the bookletgen binary
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/bookletgen")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs bookletgen into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/bookletgen")
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm(binary)
}
