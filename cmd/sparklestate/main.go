// sparklestate converts sandbox state files to and from readable YAML.
//
// Usage:
//
//	sparklestate dump [-out state.yaml] sandbox.spkl
//	sparklestate build -out sandbox.spkl state.yaml
//	sparklestate preset [-out state.yaml] firework
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/sandbox"
	"github.com/pthm-cable/sparkles/statefile"
)

const usage = `usage: sparklestate <command> [flags] <file>

commands:
  dump    print a state file as YAML
  build   write a state file from YAML
  preset  print a built-in preset as YAML
`

var errUsage = errors.New("bad usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "sparklestate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	configPath := fs.String("config", "", "Config whose sandbox limits validate states (empty = defaults)")
	outPath := fs.String("out", "", "Output file (empty = stdout; required for build)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: %s needs exactly one argument", errUsage, cmd)
	}
	in := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	limits := cfg.Derived.Limits

	switch cmd {
	case "dump":
		st, err := statefile.Load(in, limits)
		if err != nil {
			return err
		}
		return writeYAML(*outPath, stdout, &st)

	case "preset":
		cfg.Sandbox.Preset = in
		st, err := cfg.InitialState()
		if err != nil {
			return err
		}
		return writeYAML(*outPath, stdout, &st)

	case "build":
		if *outPath == "" {
			return fmt.Errorf("%w: build needs -out", errUsage)
		}
		st, err := readYAML(in, limits)
		if err != nil {
			return err
		}
		if err := statefile.Save(*outPath, &st); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s (%d emitters, %d attractors)\n",
			*outPath, len(st.Emitters), len(st.Physics.Attractors))
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func readYAML(path string, limits sandbox.Limits) (sandbox.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return sandbox.State{}, err
	}
	defer f.Close()

	st, err := statefile.ReadYAML(f)
	if err != nil {
		return sandbox.State{}, err
	}
	if err := st.Validate(limits); err != nil {
		return sandbox.State{}, fmt.Errorf("invalid state: %w", err)
	}
	return st, nil
}

func writeYAML(path string, stdout io.Writer, st *sandbox.State) error {
	if path == "" {
		return statefile.WriteYAML(stdout, st)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := statefile.WriteYAML(f, st); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
