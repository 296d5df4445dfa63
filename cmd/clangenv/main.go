package main

import (
	"context"
	"os"
	"syscall"

	"github.com/apex/log"
	"github.com/binary-install/clangenv/cmd"
	"github.com/binary-install/clangenv/pkg/activate"
	"github.com/charmbracelet/fang"
)

var (
	// Version and Commit are set during build
	version = "dev"
	commit  = "none"
)

func main() {
	// A broken toolchain install is unrecoverable; report it and exit.
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(*activate.AssertionError); ok {
				log.WithError(err).Fatal("Clang installation is incomplete")
			}
			panic(r)
		}
	}()

	if err := fang.Execute(
		context.Background(),
		cmd.RootCmd,
		fang.WithVersion(version),
		fang.WithCommit(commit),
		fang.WithNotifySignal(syscall.SIGINT, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
