// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./database/tool <command> <flags>

var (
	cpuProfileFlag = cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "sets the target file for storing CPU profiles to, disabled if empty",
		Value: "",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level, 0 = critical, 3 = info, 5 = trace",
		Value: int(log.LvlInfo),
	}
	tmpDirFlag = cli.StringFlag{
		Name:  "tmpdir",
		Usage: "directory for temporary node stores, the system default if empty",
		Value: "",
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "the seed for the random number generator, 0 for a random seed",
		Value: 0,
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "tool",
		Usage:     "Arbor commitment toolbox",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags: []cli.Flag{
			&cpuProfileFlag,
			&verbosityFlag,
		},
		Before: func(context *cli.Context) error {
			level := log.Lvl(context.Int(verbosityFlag.Name))
			log.Root().SetHandler(log.LvlFilterHandler(level, log.StreamHandler(os.Stderr, log.TerminalFormat(false))))
			return nil
		},
		Commands: []*cli.Command{
			&StressCmd,
			&AnnCmd,
		},
	}
}

func addPerformanceDiagnoses(action cli.ActionFunc) cli.ActionFunc {
	return func(context *cli.Context) error {
		cpuProfileFileName := context.String(cpuProfileFlag.Name)
		if strings.TrimSpace(cpuProfileFileName) != "" {
			if err := startCpuProfiler(cpuProfileFileName); err != nil {
				return err
			}
			defer stopCpuProfiler()
		}
		return action(context)
	}
}

func startCpuProfiler(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %s", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %s", err)
	}
	return nil
}

func stopCpuProfiler() {
	pprof.StopCPUProfile()
}
