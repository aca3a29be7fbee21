package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spigell/cv-ranker/internal/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type counter struct {
	label string
	count func() (int, error)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record totals",
	Run: func(cmd *cobra.Command, _ []string) {
		jobID, _ := cmd.Flags().GetString("job")
		resumeID, _ := cmd.Flags().GetString("resume")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		counters := []counter{
			{"job descriptions", func() (int, error) { return e.client.CountJobs(ctx) }},
			{"resumes", func() (int, error) { return e.client.CountResumes(ctx) }},
			{"evaluations", func() (int, error) { return e.client.CountEvaluations(ctx) }},
		}
		if jobID != "" {
			counters = append(counters, counter{"evaluations of job " + jobID, func() (int, error) { return e.client.CountEvaluationsByJob(ctx, jobID) }})
		}
		if resumeID != "" {
			counters = append(counters, counter{"evaluations of resume " + resumeID, func() (int, error) { return e.client.CountEvaluationsByResume(ctx, resumeID) }})
		}

		counts := make([]render.Count, len(counters))
		var g errgroup.Group
		for i, c := range counters {
			g.Go(func() error {
				n, err := c.count()
				if err != nil {
					return err
				}
				counts[i] = render.Count{Label: c.label, Value: n}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			e.logger.Fatal("counting records", zap.Error(err))
		}

		e.out.Counts(counts)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("job", "", "also count the evaluations of this job")
	statsCmd.Flags().String("resume", "", "also count the evaluations of this resume")
}
