package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"reddit-engine/internal/engine"
	"reddit-engine/internal/simulation"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Profile string
	Users   int
	Seed    uint64
	JSON    bool
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated workload against an in-process engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.resolveProfile(cmd)
			if err != nil {
				return err
			}
			e := engine.Start(engine.WithLogger(opts.logger), engine.WithRequestTimeout(opts.cfg.RequestTimeout))
			defer func() { _ = e.Stop() }()

			sim, err := simulation.New(e.Client(), profile, opts.logger)
			if err != nil {
				return err
			}
			report, err := sim.Run(cmd.Context())
			if err != nil {
				return err
			}
			if opts.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "", "YAML workload profile (default from REDDIT_ENGINE_SIM_PROFILE)")
	cmd.Flags().IntVar(&opts.Users, "users", 0, "number of simulated users")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the report as JSON")

	return cmd
}

// resolveProfile layers defaults, the profile file, env and flags, in that
// order.
func (o *SimulateOptions) resolveProfile(cmd *cobra.Command) (simulation.Profile, error) {
	path := o.cfg.Simulation.Profile
	if cmd.Flags().Changed("profile") {
		path = o.Profile
	}

	profile := simulation.DefaultProfile()
	profile.Users = o.cfg.Simulation.Users
	profile.Seed = o.cfg.Simulation.Seed
	if path != "" {
		loaded, err := simulation.LoadProfile(path)
		if err != nil {
			return simulation.Profile{}, err
		}
		profile = loaded
	}
	if cmd.Flags().Changed("users") {
		profile.Users = o.Users
	}
	if cmd.Flags().Changed("seed") {
		profile.Seed = o.Seed
	}
	return profile, profile.Validate()
}

func printReport(w io.Writer, r simulation.Report) {
	s := r.Engine
	printf(w, "\nSimulation %s completed in %v\n", r.RunID, r.Duration)
	printf(w, "\nFinal Statistics:\n")
	printf(w, "Total Users: %d (%d connected)\n", s.Users, s.ConnectedUsers)
	printf(w, "Total Subreddits: %d\n", s.Subreddits)
	printf(w, "Total Posts: %d\n", s.Posts)
	printf(w, "Total Comments: %d\n", s.Comments)
	printf(w, "Total Direct Messages: %d\n", s.DirectMessages)
	printf(w, "Total Upvotes: %d\n", s.Upvotes)
	printf(w, "Total Downvotes: %d\n", s.Downvotes)
	printf(w, "Commands Processed: %d (%.1f/s)\n", s.CommandsProcessed, s.Throughput)

	printf(w, "\nOperations (ok/failed/timed out):\n")
	for _, name := range r.OperationNames() {
		op := r.Operations[name]
		printf(w, "  %-18s %6d %6d %6d\n", name, op.OK, op.Failed, op.TimedOut)
	}

	printf(w, "\nTop %d Users by Karma:\n", len(s.TopUsers))
	for i, user := range s.TopUsers {
		printf(w, "%d. %s: %d karma\n", i+1, user.Username, user.Karma)
	}
}
