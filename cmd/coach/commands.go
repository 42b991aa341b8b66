package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/energy"
)

type logFlags struct {
	file      string
	goal      string
	unit      string
	rate      float64
	startTDEE float64
	asJSON    bool
}

func (f *logFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Log export (.json or .csv)")
	cmd.Flags().StringVar(&f.goal, "goal", "", "Override goal: cut, bulk or maintain")
	cmd.Flags().StringVar(&f.unit, "unit", "", "Override weight unit: lb or kg")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "Override target weekly rate in weight units")
	cmd.Flags().Float64Var(&f.startTDEE, "start-tdee", 0, "Starting TDEE estimate in kcal")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("file")
}

// load reads the file and applies any flags the user set.
func (f *logFlags) load(cmd *cobra.Command) (internal.NutritionLog, error) {
	log, err := loadLog(f.file)
	if err != nil {
		return log, err
	}
	if cmd.Flags().Changed("goal") {
		g, err := energy.ParseGoal(f.goal)
		if err != nil {
			return log, err
		}
		log.Goal = g
	}
	if log.Goal == "" {
		log.Goal = internal.GoalMaintain
	}
	if cmd.Flags().Changed("unit") {
		u, err := energy.ParseUnit(f.unit)
		if err != nil {
			return log, err
		}
		log.WeightUnit = u
	}
	if log.WeightUnit == "" {
		log.WeightUnit = internal.UnitLb
	}
	if cmd.Flags().Changed("rate") {
		if f.rate < 0 {
			return log, fmt.Errorf("--rate must not be negative")
		}
		log.TargetRate = f.rate
	}
	if cmd.Flags().Changed("start-tdee") {
		v := f.startTDEE
		log.StartTDEE = &v
	}
	return log, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPayloadCmd() *cobra.Command {
	var flags logFlags
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Estimate TDEE, goal intake and feedback for a log",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := flags.load(cmd)
			if err != nil {
				return err
			}
			p := energy.BuildPayload(log, log.StartTDEE, time.Now().UTC())
			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			printPayload(cmd.OutOrStdout(), p, log.WeightUnit)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printPayload(w io.Writer, p internal.EnergyPayload, unit internal.WeightUnit) {
	fmt.Fprintf(w, "Status:          %s\n", p.Status)
	if p.Status != internal.StatusInsufficientData {
		fmt.Fprintf(w, "Estimated TDEE:  %.0f kcal\n", p.EstimatedTDEE)
		fmt.Fprintf(w, "Goal intake:     %.0f-%.0f kcal\n", p.GoalIntakeRange.Low, p.GoalIntakeRange.High)
	}
	if p.StartWeight > 0 {
		fmt.Fprintf(w, "Weight:          %.2f -> %.2f %s (%+.2f/week)\n", p.StartWeight, p.CurrentWeight, unit, p.WeeklyWeightChange)
	}
	fmt.Fprintf(w, "Entries:         %d (%d complete, %d incomplete) over %d days\n",
		p.TotalEntries, p.CompleteEntries, p.IncompleteEntries, p.DaysTracked)
	for _, cat := range p.Analysis {
		fmt.Fprintf(w, "\n[%s]\n", cat.Name)
		for _, fb := range cat.Feedback {
			fmt.Fprintf(w, "  %s %s: %s\n", levelMark(fb.Level), fb.Title, fb.Message)
		}
	}
}

func levelMark(l internal.FeedbackLevel) string {
	switch l {
	case internal.LevelPositive:
		return "+"
	case internal.LevelWarning:
		return "!"
	default:
		return "-"
	}
}

func newPeriodsCmd() *cobra.Command {
	var flags logFlags
	var by string
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Group a log's entries by week or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := energy.ParsePeriodKind(by)
			if err != nil {
				return err
			}
			log, err := flags.load(cmd)
			if err != nil {
				return err
			}
			periods := energy.Periods(log.DayEntries, kind)
			if flags.asJSON {
				if periods == nil {
					periods = []internal.TimePeriod{}
				}
				return writeJSON(cmd.OutOrStdout(), periods)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "START\tEND\tENTRIES\tAVG KCAL\tAVG WEIGHT")
			for _, p := range periods {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.0f\t%.2f\n",
					p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"),
					len(p.ListOfEntries), p.Stats.AvgCalories, p.Stats.AvgWeight)
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&by, "by", "week", "Period length: week or month")
	return cmd
}

func newBoundariesCmd() *cobra.Command {
	var (
		tdee   float64
		goal   string
		rate   float64
		unit   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "boundaries",
		Short: "Daily calorie range for a TDEE and goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tdee <= 0 {
				return fmt.Errorf("--tdee must be positive")
			}
			if rate < 0 {
				return fmt.Errorf("--rate must not be negative")
			}
			g, err := energy.ParseGoal(goal)
			if err != nil {
				return err
			}
			u, err := energy.ParseUnit(unit)
			if err != nil {
				return err
			}
			b, err := energy.GoalIntakeBoundaries(tdee, g, rate, u)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.0f-%.0f kcal\n", b.Low, b.High)
			return nil
		},
	}
	cmd.Flags().Float64Var(&tdee, "tdee", 0, "Total daily energy expenditure in kcal")
	cmd.Flags().StringVar(&goal, "goal", "maintain", "Goal: cut, bulk or maintain")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Target weekly rate in weight units (0 = goal default)")
	cmd.Flags().StringVar(&unit, "unit", "lb", "Weight unit: lb or kg")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("tdee")
	return cmd
}
