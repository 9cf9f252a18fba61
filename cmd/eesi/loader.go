package main

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"eesi/internal/diag"
	"eesi/internal/ir"
)

// loadModule turns the file at path into an *ir.Module. Parsing the
// on-disk compiled IR itself is an external collaborator;
// this hook is the seam a real build wires a decoder into. The default
// here always fails, which is why every test in this module builds its
// IR directly with ir.Builder rather than going through a file on disk.
var loadModule = func(path string) (*ir.Module, error) {
	return nil, errors.Errorf("no IR decoder is wired into this binary: cannot load %s", path)
}

// mustLoadModule loads flagBitcode or aborts the run.
func mustLoadModule() *ir.Module {
	m, err := loadModule(flagBitcode)
	if err != nil {
		diag.Malformed("loading "+flagBitcode, err)
	}
	if flagDebugFunc != "" && m.FuncByName(flagDebugFunc) == nil {
		glog.Warningf("--debugfunction %q names no function in %s", flagDebugFunc, flagBitcode)
	}
	return m
}
