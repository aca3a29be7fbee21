package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spigell/cv-ranker/internal/detail"
	"go.uber.org/zap"
)

var candidateCmd = &cobra.Command{
	Use:   "candidate <resume-id>",
	Short: "Show the details of one candidate",
	Run: func(cmd *cobra.Command, args []string) {
		resumeID := requireArg(args, 0, "resume id")
		jobID, _ := cmd.Flags().GetString("job")
		evaluate, _ := cmd.Flags().GetBool("evaluate")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		loader := detail.NewLoader(e.client, e.logger)

		// Opened directly, so the evaluation state is fetched.
		view, err := loader.Open(ctx, detail.Request{ResumeID: resumeID, JobID: jobID})
		if err != nil {
			e.logger.Fatal("opening candidate", zap.Error(err))
		}

		if evaluate && !view.Evaluated() {
			if _, err := loader.Evaluate(ctx, view); err != nil {
				e.logger.Fatal("evaluating candidate", zap.Error(err))
			}
		}

		e.out.Detail(view)
	},
}

func init() {
	rootCmd.AddCommand(candidateCmd)

	candidateCmd.Flags().String("job", "", "job to show the evaluation for")
	candidateCmd.Flags().Bool("evaluate", false, "evaluate the candidate when no evaluation exists")
}
