package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/tracker"
	"github.com/warp/worktime-engine/worktime"
)

func newStatsCmd(a *app) *cobra.Command {
	var todayRaw string

	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"st"},
		Short:   "Show overtime for today, this week, this month, and overall",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := dateOrToday(a, todayRaw)
			if err != nil {
				return err
			}
			stats, err := a.service.Stats(cmd.Context(), today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Overtime as of %s\n", today)
			fmt.Fprintln(out, "--------------------------------------------")
			fmt.Fprintf(out, "%-12s%10s%10s%12s\n", "", "worked", "target", "overtime")
			printWindow(out, "Today", stats.Daily)
			printWindow(out, "Week", stats.Weekly)
			printWindow(out, "Month", stats.Monthly)
			printWindow(out, "Total", stats.Cumulative)
			return nil
		},
	}
	cmd.Flags().StringVar(&todayRaw, "today", "", "Reference day YYYY-MM-DD (default: today)")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report <YYYY-MM>",
		Short: "Show the monthly report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := generic.ParseYearMonth(args[0])
			if err != nil {
				return err
			}
			report, err := a.service.MonthlyReport(cmd.Context(), month)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report %s\n", report.Month)
			fmt.Fprintln(out, "--------------------------------")
			for _, e := range report.Entries {
				if e.IsAbsence() {
					fmt.Fprintf(out, "%s  %-8s %s\n", e.Date, e.Type, e.Note)
					continue
				}
				fmt.Fprintf(out, "%s  %s-%s %6sh %s\n", e.Date, e.Start, e.End, e.WorkedHours.Value.StringFixed(2), e.Note)
			}
			fmt.Fprintln(out, "--------------------------------")
			fmt.Fprintf(out, "%-16s%d\n", "Work records", report.WorkDays)
			fmt.Fprintf(out, "%-16s%sh\n", "Worked", report.TotalWorkedHours.Value.StringFixed(2))
			fmt.Fprintf(out, "%-16s%sh\n", "Target", report.TotalTargetHours.Value.StringFixed(2))
			fmt.Fprintf(out, "%-16s%sh\n", "Overtime", signed(report.MonthlyOvertime))
			fmt.Fprintf(out, "%-16s%d / %d / %d\n", "Vac/Sick/Hol", report.VacationDays, report.SickDays, report.HolidayDays)
			return nil
		},
	}
}

func newAbsencesCmd(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "absences",
		Short: "Show vacation, sick, and holiday days for a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = a.service.Today().Year()
			}
			stats, err := a.service.YearAbsences(cmd.Context(), year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Absences %d\n", stats.Year)
			fmt.Fprintf(out, "%-10s%d used, %s of %s remaining\n", "Vacation",
				stats.Vacation.Used, stats.Vacation.Remaining.Value.String(), stats.Vacation.Total.Value.String())
			fmt.Fprintf(out, "%-10s%d\n", "Sick", stats.SickUsed)
			fmt.Fprintf(out, "%-10s%d\n", "Holiday", stats.HolidayUsed)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Calendar year (default: current year)")
	return cmd
}

func newLogCmd(a *app) *cobra.Command {
	var (
		breakMinutes int
		note         string
	)

	cmd := &cobra.Command{
		Use:   "log <date> <start> <end>",
		Short: "Record a work interval",
		Long:  `Record a work interval, e.g. "worktime log 2025-03-10 09:00 17:30 --break 30".`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateOrToday(a, args[0])
			if err != nil {
				return err
			}
			entry, err := a.service.RecordWork(cmd.Context(), tracker.WorkInput{
				Date:         date,
				Start:        args[1],
				End:          args[2],
				BreakMinutes: breakMinutes,
				Note:         note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %sh on %s (%s)\n",
				entry.WorkedHours.Value.StringFixed(2), entry.Date, entry.ID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&breakMinutes, "break", "b", 0, "Break in minutes")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note")
	return cmd
}

func newAbsenceCmd(a *app) *cobra.Command {
	var (
		typ        string
		note       string
		compensate float64
	)

	cmd := &cobra.Command{
		Use:   "absence <from> [to]",
		Short: "Record vacation, sick, or holiday days",
		Long: `Record one absence record per day. A range skips days without target
hours. --compensate books the given overtime hours as taken off.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := generic.ParseDate(args[0])
			if err != nil {
				return err
			}
			var to generic.Date
			if len(args) == 2 {
				if to, err = generic.ParseDate(args[1]); err != nil {
					return err
				}
			}
			entryType, err := worktime.ParseEntryType(typ)
			if err != nil {
				return err
			}

			result, err := a.service.RecordAbsence(cmd.Context(), tracker.AbsenceInput{
				From:              from,
				To:                to,
				Type:              entryType,
				Note:              note,
				CompensationHours: decimal.NewFromFloat(compensate),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			days := make([]string, len(result.Entries))
			for i, e := range result.Entries {
				days[i] = e.Date.String()
			}
			fmt.Fprintf(out, "Recorded %d %s day(s): %s\n", len(days), entryType, strings.Join(days, ", "))
			if c := result.Compensation; c != nil {
				fmt.Fprintf(out, "Compensation: %sh\n", c.Hours.Value.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "vacation", "Absence type: vacation, sick, holiday")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note")
	cmd.Flags().Float64Var(&compensate, "compensate", 0, "Overtime hours taken off")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup of all data (stdout if no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.service.Export(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary, err := a.service.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries and %d history items\n", summary.Entries, summary.History)
			return nil
		},
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

func dateOrToday(a *app, raw string) (generic.Date, error) {
	if raw == "" || raw == "today" {
		return a.service.Today(), nil
	}
	return generic.ParseDate(raw)
}

func printWindow(out io.Writer, label string, w worktime.WindowStats) {
	fmt.Fprintf(out, "%-12s%9sh%9sh%11sh\n", label,
		w.Worked.Value.StringFixed(2), w.Target.Value.StringFixed(2), signed(w.Overtime))
}

func signed(a generic.Amount) string {
	s := a.Value.StringFixed(2)
	if a.IsPositive() {
		return "+" + s
	}
	return s
}
