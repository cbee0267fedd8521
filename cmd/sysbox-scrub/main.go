//
// Copyright 2019-2022 Nestybox, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/nestybox/sysbox-scrub/memory"
	"github.com/nestybox/sysbox-scrub/process"
	"github.com/nestybox/sysbox-scrub/splice"
	"github.com/nestybox/sysbox-scrub/tracer"
	"github.com/pkg/profile"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	usage = `syscall scrubber

sysbox-scrub runs a program under ptrace and removes a byte pattern (by
default the "--unshare-pid" argument) from the first write(2) buffer that
carries it, before the kernel performs the write. The program's stdio is
passed through untouched otherwise.
`
)

// Globals to be populated at build time during Makefile processing.
var (
	version  string // extracted from VERSION file
	commitId string // latest git commit-id
	builtAt  string // build time
	builtBy  string // build owner
)

// newPattern builds the scrub pattern out of the CLI settings. With nul set,
// a NUL terminator is appended to the pattern and to a non-empty replacement
// so that only whole NUL-separated arguments match.
func newPattern(pattern string, nul bool, replacement string) (*splice.Pattern, error) {

	needle := []byte(pattern)
	repl := []byte(replacement)

	if nul {
		needle = append(needle, 0)
		if len(repl) > 0 {
			repl = append(repl, 0)
		}
	}

	return splice.NewPattern(needle, repl)
}

// Run cpu / memory profiling collection.
func runProfiler(ctx *cli.Context) (interface{ Stop() }, error) {

	var prof interface{ Stop() }

	cpuProfOn := ctx.GlobalBool("cpu-profiling")
	memProfOn := ctx.GlobalBool("memory-profiling")

	// Cpu and Memory profiling options seem to be mutually exclused in pprof.
	if cpuProfOn && memProfOn {
		return nil, fmt.Errorf("Unsupported parameter combination: cpu and memory profiling")
	}

	// Typical / non-profiling case.
	if !(cpuProfOn || memProfOn) {
		return nil, nil
	}

	// Notice that 'NoShutdownHook' option is passed to profiler constructor to
	// avoid this one reacting to 'sigterm' signal arrival. IOW, we want
	// the tracee's exit to be what drives the profiler's shutdown.
	if cpuProfOn {
		prof = profile.Start(
			profile.CPUProfile,
			profile.ProfilePath("."),
			profile.NoShutdownHook,
		)
	} else {
		prof = profile.Start(
			profile.MemProfile,
			profile.ProfilePath("."),
			profile.NoShutdownHook,
		)
	}

	return prof, nil
}

// sysbox-scrub main function
func main() {

	app := cli.NewApp()
	app.Name = "sysbox-scrub"
	app.Usage = usage
	app.Version = version
	app.ArgsUsage = "<program> [program-args...]"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log",
			Value: "/dev/stderr",
			Usage: "log file path",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log categories to include (debug, info, warning, error, fatal)",
		},
		cli.StringFlag{
			Name:  "pattern",
			Value: "--unshare-pid",
			Usage: "byte pattern to scrub from write buffers",
		},
		cli.BoolTFlag{
			Name:  "pattern-nul",
			Usage: "append a NUL terminator to pattern and replacement (default: true)",
		},
		cli.StringFlag{
			Name:  "replacement",
			Value: "",
			Usage: "replace the pattern instead of removing it (must not be longer)",
		},
		cli.BoolFlag{
			Name:  "keep-tracing",
			Usage: "keep scrubbing after the first hit, until the program exits",
		},
		cli.StringFlag{
			Name:  "mem-backend",
			Value: memory.BackendPtrace,
			Usage: "tracee memory access method (ptrace, procfs)",
		},
		cli.IntFlag{
			Name:  "max-buffer",
			Value: 0,
			Usage: "largest write buffer to inspect in bytes (0 = unlimited)",
		},
		cli.BoolFlag{
			Name:   "cpu-profiling",
			Usage:  "enable cpu-profiling data collection",
			Hidden: true,
		},
		cli.BoolFlag{
			Name:   "memory-profiling",
			Usage:  "enable memory-profiling data collection",
			Hidden: true,
		},
	}

	// show-version specialization.
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("sysbox-scrub\n"+
			"\tversion: \t%s\n"+
			"\tcommit: \t%s\n"+
			"\tbuilt at: \t%s\n"+
			"\tbuilt by: \t%s\n",
			c.App.Version, commitId, builtAt, builtBy)
	}

	// Define 'debug' and 'log' settings.
	app.Before = func(ctx *cli.Context) error {

		// Create/set the log-file destination.
		if path := ctx.GlobalString("log"); path != "" {
			f, err := os.OpenFile(
				path,
				os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC,
				0666,
			)
			if err != nil {
				logrus.Fatalf(
					"Error opening log file %v: %v. Exiting ...",
					path, err,
				)
				return err
			}

			// Set a proper logging formatter.
			logrus.SetFormatter(tracer.LogFormatter())
			logrus.SetOutput(f)
			log.SetOutput(f)
		}

		// Set desired log-level.
		if logLevel := ctx.GlobalString("log-level"); logLevel != "" {
			switch logLevel {
			case "debug":
				logrus.SetLevel(logrus.DebugLevel)
			case "info":
				logrus.SetLevel(logrus.InfoLevel)
			case "warning":
				logrus.SetLevel(logrus.WarnLevel)
			case "error":
				logrus.SetLevel(logrus.ErrorLevel)
			case "fatal":
				logrus.SetLevel(logrus.FatalLevel)
			default:
				logrus.Fatalf(
					"log-level option '%v' not recognized. Exiting ...",
					logLevel,
				)
			}
		} else {
			// Set 'info' as our default log-level.
			logrus.SetLevel(logrus.InfoLevel)
		}

		return nil
	}

	// sysbox-scrub main execution.
	app.Action = func(ctx *cli.Context) error {

		if ctx.NArg() < 1 {
			cli.ShowAppHelp(ctx)
			return cli.NewExitError("missing program to trace", 1)
		}

		pattern, err := newPattern(
			ctx.GlobalString("pattern"),
			ctx.GlobalBoolT("pattern-nul"),
			ctx.GlobalString("replacement"),
		)
		if err != nil {
			logrus.Fatalf("Invalid scrub pattern: %v. Exiting ...", err)
		}

		maxBuffer := ctx.GlobalInt("max-buffer")
		if maxBuffer < 0 {
			logrus.Fatalf("Invalid max-buffer value %d. Exiting ...", maxBuffer)
		}

		// Construct sysbox-scrub services.
		var processService = process.NewProcessService()

		memService, err := memory.NewMemService(ctx.GlobalString("mem-backend"))
		if err != nil {
			logrus.Fatalf("MemService initialization error: %v. Exiting ...", err)
		}

		var syscallMonitorService = tracer.NewSyscallMonitorService()
		syscallMonitorService.Setup(
			processService,
			memService,
			tracer.Config{
				Pattern:     pattern,
				KeepTracing: ctx.GlobalBool("keep-tracing"),
				MaxBuffer:   maxBuffer,
			},
		)

		// Launch profiler if requested to do so.
		prof, err := runProfiler(ctx)
		if err != nil {
			logrus.Fatal(err)
		}
		if prof != nil {
			defer prof.Stop()
		}

		args := ctx.Args()
		report, err := syscallMonitorService.Run(args.First(), args.Tail())
		if err != nil {
			if errors.Is(err, tracer.ErrSpawn) {
				logrus.Fatalf("Unable to launch %s: %v. Exiting ...", args.First(), err)
			}
			logrus.Fatalf("Tracing of %s failed: %v. Exiting ...", args.First(), err)
		}

		// Hand the child's exit status over to our caller.
		if report.ExitCode != 0 {
			return cli.NewExitError("", report.ExitCode)
		}

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
