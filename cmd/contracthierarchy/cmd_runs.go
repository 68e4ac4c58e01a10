package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contracthierarchy/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "查看最近的运行历史",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "最多显示条数（0 表示全部）")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "运行历史未启用（在 config.toml 中设置 [history] enabled = true）")
		return nil
	}

	st, err := store.New(cfg.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("打开运行历史失败: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "暂无运行记录")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tFILE\tRECORDS\tPARENT\tCHILD/PARENT\tCHILD\tSUB CHILD\tAMBIGUOUS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.Filename,
			r.TotalRecords, r.Parents, r.ChildParents, r.Children, r.SubChildren, r.Ambiguities)
		if r.ErrorMessage != "" {
			fmt.Fprintf(tw, "\t\t  %s\t\t\t\t\t\t\n", r.ErrorMessage)
		}
	}
	return tw.Flush()
}
