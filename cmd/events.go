package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
	"github.com/Shivanand-hulikatti/event-nexus/internal/service"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the filtered catalog",
	Example: `  nexus events
  nexus events --query summit
  nexus events --category Business`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringP("query", "q", "", "case-insensitive text to match in title or description")
	eventsCmd.Flags().String("category", string(model.CategoryAll), "category to show, or \"all\"")
}

func runEvents(cmd *cobra.Command, _ []string) error {
	query, _ := cmd.Flags().GetString("query")
	category, _ := cmd.Flags().GetString("category")

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.close()

	cards, err := a.events.ListCards(cmd.Context(), cfg.Session.DefaultViewer, model.FilterCriteria{
		Query:    query,
		Category: model.Category(category),
	})
	if err != nil {
		return err
	}
	return printCards(cmd.OutOrStdout(), cards)
}

func printCards(out io.Writer, cards []service.Card) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(out, "No events found")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tDATE\tPRICE\tFILLED\tSTARTS")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%d/%d (%d%%)\t%s\n",
			c.ID, c.Title, c.Category, c.Date, c.Time, c.PriceLabel,
			c.CurrentAttendees, c.Capacity, c.FillPercent, countdown(c))
	}
	return tw.Flush()
}

func countdown(c service.Card) string {
	switch {
	case c.Urgent && c.DaysLeft == 1:
		return "1 day left!"
	case c.Urgent:
		return fmt.Sprintf("%d days left!", c.DaysLeft)
	case c.DaysLeft > 0:
		return fmt.Sprintf("in %d days", c.DaysLeft)
	default:
		return "started"
	}
}
