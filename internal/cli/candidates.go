package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/hackbite/internal/domain/matching"
)

// ErrVerification is returned when a ranking breaks a matcher guarantee.
var ErrVerification = errors.New("ranking verification failed")

type candidatesFlags struct {
	baseURL  string
	leaderID int64
	sortBy   string
	limit    int
	window   int
	quiet    bool
}

func newCandidatesCommand() *cobra.Command {
	f := &candidatesFlags{}
	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Fetch and verify the teammate ranking of a leader from a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.leaderID <= 0 {
				return errors.New("--leader is required")
			}
			sortBy, err := matching.ParseSortKey(f.sortBy)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client := NewClient(f.baseURL, nil)

			res, err := client.Candidates(ctx, f.leaderID, sortBy, f.limit)
			if err != nil {
				return err
			}
			exp := Expectation{LeaderID: f.leaderID, Window: f.window, SortBy: sortBy, Limit: f.limit}
			if score, err := client.OverallScore(ctx, f.leaderID); err == nil {
				exp.LeaderScore = &score
			}
			if !f.quiet {
				printRanking(cmd.OutOrStdout(), res)
			}
			violations := Verify(res, exp)
			for _, v := range violations {
				fmt.Fprintln(cmd.ErrOrStderr(), "violation:", v)
			}
			if len(violations) > 0 {
				return fmt.Errorf("%w: %d violations", ErrVerification, len(violations))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d candidates verified\n", len(res.Candidates))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.baseURL, "base-url", "http://localhost:5000", "server base URL")
	cmd.Flags().Int64Var(&f.leaderID, "leader", 0, "leader user id")
	cmd.Flags().StringVar(&f.sortBy, "sort-by", "", "complementary, overall, git or resume")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum candidates (0 keeps the server default)")
	cmd.Flags().IntVar(&f.window, "window", matching.DefaultWindow, "rating window the server is configured with")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only print the verification result")
	return cmd
}

func printRanking(w io.Writer, res CandidateResult) {
	fmt.Fprintf(w, "leader skills: %s\n", strings.Join(res.LeaderSkills, ", "))
	fmt.Fprintf(w, "rating range:  [%d, %d]\n", res.RatingRange.Min, res.RatingRange.Max)
	if len(res.RecommendedSkills) > 0 {
		fmt.Fprintf(w, "recommended:   %s\n", strings.Join(res.RecommendedSkills, ", "))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tOVERALL\tGIT\tRESUME\tCOMPL\tSKILLS")
	for i, c := range res.Candidates {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%.1f\t%s\n", i+1, c.ID, c.Name,
			c.OverallScore, c.GithubScore, c.ResumeScore, c.ComplementaryScore, strings.Join(c.Skills, ","))
	}
	_ = tw.Flush()
}
