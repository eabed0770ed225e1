// cmd/sharedinstance/main.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/shared/internal/config"
	"github.com/sghaida/shared/internal/logging"
	"github.com/sghaida/shared/sample"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// errNotShared is returned when callers observed more than one instance.
var errNotShared = errors.New("shared instance identity violated")

// usageError marks bad flags or arguments so run can exit with 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// report is what the probe prints.
type report struct {
	ID        string    `yaml:"id"`
	Type      string    `yaml:"type"`
	CreatedAt time.Time `yaml:"createdAt"`
	Callers   int       `yaml:"callers"`
	Distinct  int       `yaml:"distinct"`
}

// run executes the CLI and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.As(err, new(usageError)):
		return 2
	default:
		return 1
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		cfgPath  string
		callers  int
		logLevel string
		output   string
	)

	cmd := &cobra.Command{
		Use:          "sharedinstance",
		Short:        "Probe the process-wide sample instance from concurrent callers",
		Version:      version,
		SilenceUsage: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError{fmt.Errorf("unexpected arguments: %v", args)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// flags override file and env, so validation waits until they are applied
			cfg, err := config.Read(cfgPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("callers") {
				cfg.Callers = callers
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("output") {
				cfg.Output = output
			}
			if err := cfg.Validate(); err != nil {
				return usageError{err}
			}

			logger, err := logging.Setup(cfg, stderr)
			if err != nil {
				return err
			}

			rep := probe(cfg.Callers)
			logger.WithFields(log.Fields{
				"callers":  rep.Callers,
				"distinct": rep.Distinct,
			}).Info("probe finished")

			if err := writeReport(stdout, cfg.Output, rep); err != nil {
				return err
			}
			if rep.Distinct != 1 {
				return errNotShared
			}
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(`{{printf "sharedinstance version %s\n" .Version}}`)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "path to a YAML config file")
	f.IntVar(&callers, "callers", 0, "number of concurrent callers (default from config)")
	f.StringVar(&logLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	f.StringVar(&output, "output", "", "report format: yaml|text")

	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sharedinstance",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(stdout, "sharedinstance version %s\n", version)
		},
	}
}

// probe releases callers goroutines at once and records what each one received.
func probe(callers int) report {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		got   = make([]*sample.Sample, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = sample.SharedInstance()
		}(i)
	}
	close(start)
	wg.Wait()

	seen := make(map[*sample.Sample]struct{}, 1)
	for _, s := range got {
		seen[s] = struct{}{}
	}

	first := got[0]
	return report{
		ID:        first.ID,
		Type:      fmt.Sprintf("%T", first),
		CreatedAt: first.CreatedAt,
		Callers:   callers,
		Distinct:  len(seen),
	}
}

func writeReport(w io.Writer, format string, rep report) error {
	if format == "text" {
		_, err := fmt.Fprintf(w, "id=%s type=%s createdAt=%s callers=%d distinct=%d\n",
			rep.ID, rep.Type, rep.CreatedAt.Format(time.RFC3339Nano), rep.Callers, rep.Distinct)
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}
