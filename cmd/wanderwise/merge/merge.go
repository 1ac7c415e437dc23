package mergecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wanderwise/cmd/wanderwise/bootstrap"
	"github.com/papercomputeco/wanderwise/pkg/merkle"
)

const mergeLongDesc string = `Merge one or more journal databases into a target.

Content-addressing makes this a simple union: nodes that already
exist in the target are skipped (deduped by hash).

Examples:
  wanderwise merge laptop.db phone.db
  wanderwise merge --db /tmp/merged.db ~/alice/journal.db ~/bob/journal.db`

const mergeShortDesc string = "Merge journal databases"

type mergeCommander struct {
	dbPath string
}

func NewMergeCmd() *cobra.Command {
	cmder := &mergeCommander{}

	cmd := &cobra.Command{
		Use:   "merge [sources...]",
		Short: mergeShortDesc,
		Long:  mergeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to the target journal (default: $WANDERWISE_DB)")

	return cmd
}

func (c *mergeCommander) run(ctx context.Context, cmd *cobra.Command, sources []string) error {
	targetPath, err := bootstrap.ResolveDBPath(c.dbPath)
	if err != nil {
		return err
	}

	target, err := merkle.NewSQLiteStorer(targetPath)
	if err != nil {
		return fmt.Errorf("could not open target database %s: %w", targetPath, err)
	}
	defer target.Close()

	var totalNew, totalDuped int

	for _, srcPath := range sources {
		srcNew, srcDuped, err := mergeSource(ctx, target, srcPath)
		if err != nil {
			return err
		}

		totalNew += srcNew
		totalDuped += srcDuped

		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d new, %d already existed\n", srcPath, srcNew, srcDuped)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d new nodes from %d sources (%d already existed) into %s\n",
		totalNew, len(sources), totalDuped, targetPath)

	return nil
}

// mergeSource copies the nodes of one database into target, parents first.
func mergeSource(ctx context.Context, target merkle.Storer, srcPath string) (int, int, error) {
	source, err := merkle.NewSQLiteStorer(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("could not open source database %s: %w", srcPath, err)
	}
	defer source.Close()

	nodes, err := source.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("could not list nodes from %s: %w", srcPath, err)
	}

	var added, duped int
	for _, n := range nodes {
		exists, err := target.Has(ctx, n.Hash)
		if err != nil {
			return 0, 0, fmt.Errorf("could not check node %s: %w", n.Hash, err)
		}
		if exists {
			duped++
			continue
		}

		if err := target.Put(ctx, n); err != nil {
			return 0, 0, fmt.Errorf("could not put node %s: %w", n.Hash, err)
		}
		added++
	}

	return added, duped, nil
}
