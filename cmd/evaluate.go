package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <resume-id> <job-id>",
	Short: "Score a resume against a job description",
	Run: func(_ *cobra.Command, args []string) {
		resumeID := requireArg(args, 0, "resume id")
		jobID := requireArg(args, 1, "job id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		ev, err := e.client.Evaluate(ctx, resumeID, jobID)
		if err != nil {
			if errors.Is(err, store.ErrProvider) {
				e.logger.Fatal("scoring provider failed", zap.Error(err),
					zap.String("hint", "check 'cv-ranker health' for the provider status"))
			}
			e.logger.Fatal("evaluating resume", zap.Error(err))
		}

		e.out.Evaluation(ev)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
