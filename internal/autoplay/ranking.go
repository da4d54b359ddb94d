package autoplay

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// printResult writes the outcome and the ranking table.
func printResult(out io.Writer, res Result) {
	if res.Winner != nil {
		fmt.Fprintf(out, "%s wins after %d throws (%d busts)\n", res.Winner.Name, res.Throws, res.Busts)
	} else {
		fmt.Fprintf(out, "no winner after %d throws (%d busts)\n", res.Throws, res.Busts)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tREMAINING\tTHROWS")
	for _, e := range res.Ranking {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", e.Rank, e.Name, e.Remaining, e.Throws)
	}
	_ = tw.Flush()
}
