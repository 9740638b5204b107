// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/walteh/vaultlink/pkg/config"
	"gitlab.com/tozd/go/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reportError prints err for a person to read, with the remediation hint
// when it is a configuration problem
func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed).SprintFunc()

	var cerr *config.ConfigError
	if errors.As(err, &cerr) {
		fmt.Fprintf(w, "❌ %s\n", red(fmt.Sprintf("invalid %s %q", cerr.Field, cerr.Path)))
		if cerr.Err != nil {
			fmt.Fprintf(w, "   %v\n", cerr.Err)
		}
		if cerr.Hint != "" {
			fmt.Fprintf(w, "💡 %s\n", cerr.Hint)
		}
		return
	}

	fmt.Fprintf(w, "❌ %s\n", red(err.Error()))
}
