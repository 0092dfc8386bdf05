// Package generator drives the external documentation generator and
// the VCS commit lookup the pack driver embeds alongside the manifest
// (§4.8 steps 1-4, §7). Both are plain subprocess invocations, captured
// and logged the way the teacher's build driver runs its own external
// tools.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/docserver/zuparchive/internal/flavor"
)

// Job is one flavor's sub-invocation: its resolved Flavor plus the
// per-flavor output directory the generator should write into.
type Job struct {
	Flavor flavor.Flavor
	OutDir string
}

// Options parameterizes one batched generator invocation.
type Options struct {
	// Binary is the generator executable, e.g. "rustdoc-batch".
	Binary string
	// ManifestPath is passed through to every sub-job.
	ManifestPath string
	// StaticRootPath is the sentinel static-asset root passed to the
	// generator (§4.8 step 4: "--static-root-path /static/").
	StaticRootPath string
	// LocalDeps lists the path-dependency names; Build emits one sentinel
	// extern-html-root-url per name, sorted
	// ("--extern-html-root-url <dep>=/__DOCSERVER_DEPLINK/<dep>/").
	LocalDeps []string
}

// Build invokes the generator once, in batch mode, with one --job
// argument per element of jobs. It returns the captured stdout/stderr
// regardless of outcome, and a *GeneratorFailed wrapping a nonzero
// exit.
func Build(ctx context.Context, opts Options, jobs []Job) (stdout, stderr string, err error) {
	args := []string{"build", "--manifest", opts.ManifestPath}
	if opts.StaticRootPath != "" {
		args = append(args, "--static-root-path", opts.StaticRootPath)
	}

	deps := append([]string(nil), opts.LocalDeps...)
	sort.Strings(deps)
	for _, dep := range deps {
		args = append(args, "--extern-html-root-url",
			fmt.Sprintf("%s=/__DOCSERVER_DEPLINK/%s/", dep, dep))
	}

	for _, job := range jobs {
		args = append(args, "--job", jobSpec(job))
	}

	cmd := exec.CommandContext(ctx, opts.Binary, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	logrus.WithFields(logrus.Fields{
		"binary": opts.Binary,
		"jobs":   len(jobs),
	}).Info("generator: invoking batched build")

	runErr := cmd.Run()
	stdout, stderr = outBuf.String(), errBuf.String()

	if runErr != nil {
		exitCode := -1
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return stdout, stderr, &GeneratorFailed{Exit: exitCode, Stdout: stdout, Stderr: stderr, Err: runErr}
	}

	return stdout, stderr, nil
}

func jobSpec(j Job) string {
	return fmt.Sprintf("name=%s,out=%s,target=%s,features=%s",
		j.Flavor.Name, j.OutDir, j.Flavor.Target, strings.Join(j.Flavor.Features, ","))
}
