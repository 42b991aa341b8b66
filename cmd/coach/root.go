package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coach",
		Short:         "coach estimates TDEE and calorie targets from a nutrition log",
		Long:          "coach computes the same energy payload as the SmartCoach API from a JSON or CSV export, without a server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPayloadCmd(), newPeriodsCmd(), newBoundariesCmd())
	return root
}
