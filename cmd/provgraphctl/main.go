// Package main provides the provgraphctl CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orneryd/provgraph/pkg/client"
	"github.com/orneryd/provgraph/pkg/config"
	"github.com/orneryd/provgraph/pkg/loader"
	"github.com/orneryd/provgraph/pkg/provenance"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "provgraphctl",
		Short: "provgraphctl - provenance graph store command-line tool",
		Long: `provgraphctl operates an embedded provenance graph store: a
typed, directed, labeled property-multigraph database for recording and
querying data-lineage graphs.

It opens the store at PROVENANCE_DB_LOCATION (or $HOME/provenance.db) and
talks to it directly through the in-process client facade; there is no
server and no wire protocol.`,
	}

	rootCmd.AddCommand(versionCmd(), bootstrapCmd(), reportCmd(), graphCmd(), queryCmd(), labelsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("provgraphctl v%s (%s)\n", version, commit)
		},
	}
}

func bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Open the store and run the one-time schema bootstrap",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient()
			if err != nil {
				return err
			}
			defer c.Close()
			fmt.Println("bootstrap complete")
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file.yaml>",
		Short: "Load a YAML seed document and report it to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient()
			if err != nil {
				return err
			}
			defer c.Close()
			n, err := loader.LoadFile(c, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("reported %d new elements\n", n)
			return nil
		},
	}
	return cmd
}

func graphCmd() *cobra.Command {
	var maxDepth, n int
	var forward, backward, includeEdges, includeNPEs, followNPIDs, explain bool
	var viewer string

	cmd := &cobra.Command{
		Use:   "graph <oid>",
		Short: "Traverse the lineage graph from a starting oid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient()
			if err != nil {
				return err
			}
			defer c.Close()

			user := &client.User{PrivilegeClass: viewer}
			settings := provenance.TraversalSettings{
				MaxDepth: maxDepth, N: n, BreadthFirst: true,
				Forward: forward, Backward: backward,
				IncludeNodes: true, IncludeEdges: includeEdges, IncludeNPEs: includeNPEs,
				FollowNPIDs: followNPIDs,
			}
			d, err := c.GetGraph(user, args[0], settings)
			if err != nil {
				return err
			}
			for _, o := range d.Objects {
				fmt.Println(o.String())
			}
			if explain {
				fp := d.Fingerprint()
				fmt.Printf("fingerprint: nodes=%d edges=%d npes=%d\n", fp.NodeCount, fp.EdgeCount, fp.NPECount)
				for phase, ns := range fp.Durations {
					fmt.Printf("  %s: %dns\n", phase, ns)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum hop count, unbounded if <= 0")
	cmd.Flags().IntVar(&n, "limit", 0, "maximum node count, unbounded if <= 0")
	cmd.Flags().BoolVar(&forward, "forward", true, "follow outgoing edges")
	cmd.Flags().BoolVar(&backward, "backward", false, "follow incoming edges")
	cmd.Flags().BoolVar(&includeEdges, "edges", true, "include edges in the result")
	cmd.Flags().BoolVar(&includeNPEs, "npes", false, "include non-provenance edges")
	cmd.Flags().BoolVar(&followNPIDs, "follow-npids", false, "traverse across NPE edges")
	cmd.Flags().StringVar(&viewer, "viewer", provenance.PIDPublic, "calling viewer's privilege class")
	cmd.Flags().BoolVar(&explain, "explain", false, "print per-pass timing fingerprint")
	return cmd
}

func queryCmd() *cobra.Command {
	var viewer string
	cmd := &cobra.Command{
		Use:   "query <pattern>",
		Short: `Run a textual query, e.g. "label:Provenance prop:type=data limit:50"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient()
			if err != nil {
				return err
			}
			defer c.Close()
			user := &client.User{PrivilegeClass: viewer}
			coll, err := c.Query(user, args[0])
			if err != nil {
				return err
			}
			for _, o := range coll.Objects {
				fmt.Println(o.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&viewer, "viewer", provenance.PIDPublic, "calling viewer's privilege class")
	return cmd
}

func labelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the distinct node labels present in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient()
			if err != nil {
				return err
			}
			defer c.Close()
			labels, err := c.Labels()
			if err != nil {
				return err
			}
			for _, l := range labels {
				fmt.Println(l)
			}
			return nil
		},
	}
}

func openClient() (*client.Client, error) {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return client.OpenWithConfig(cfg)
}
