package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spigell/cv-ranker/internal/model"
	"go.uber.org/zap"
)

var evaluationsCmd = &cobra.Command{
	Use:     "evaluations",
	Aliases: []string{"evals"},
	Short:   "Browse stored evaluations",
}

var evaluationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List evaluations",
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		evals, err := e.client.ListEvaluations(ctx, pageFrom(cmd))
		if err != nil {
			e.logger.Fatal("listing evaluations", zap.Error(err))
		}
		e.out.Evaluations(evals)
	},
}

var evaluationsShowCmd = &cobra.Command{
	Use:   "show <evaluation-id>",
	Short: "Show an evaluation",
	Run: func(_ *cobra.Command, args []string) {
		id := requireArg(args, 0, "evaluation id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		ev, err := e.client.GetEvaluation(ctx, id)
		if err != nil {
			e.logger.Fatal("getting evaluation", zap.Error(err))
		}
		e.out.Evaluation(ev)
	},
}

var evaluationsByJobCmd = &cobra.Command{
	Use:   "by-job <job-id>",
	Short: "List evaluations of a job",
	Run: func(cmd *cobra.Command, args []string) {
		id := requireArg(args, 0, "job id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		evals, err := e.client.EvaluationsByJob(ctx, id, pageFrom(cmd))
		if err != nil {
			e.logger.Fatal("listing evaluations", zap.Error(err))
		}
		e.out.Evaluations(evals)
	},
}

var evaluationsByResumeCmd = &cobra.Command{
	Use:   "by-resume <resume-id>",
	Short: "List evaluations of a resume",
	Run: func(cmd *cobra.Command, args []string) {
		id := requireArg(args, 0, "resume id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		evals, err := e.client.EvaluationsByResume(ctx, id, pageFrom(cmd))
		if err != nil {
			e.logger.Fatal("listing evaluations", zap.Error(err))
		}
		e.out.Evaluations(evals)
	},
}

var evaluationsTopCmd = &cobra.Command{
	Use:   "top <job-id>",
	Short: "List the best scored evaluations of a job",
	Run: func(cmd *cobra.Command, args []string) {
		id := requireArg(args, 0, "job id")
		limit, _ := cmd.Flags().GetInt("limit")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		evals, err := e.client.TopEvaluations(ctx, id, limit)
		if err != nil {
			e.logger.Fatal("listing top evaluations", zap.Error(err))
		}
		e.out.Evaluations(evals)
	},
}

var evaluationsForCmd = &cobra.Command{
	Use:   "for <job-id> <resume-id>",
	Short: "Show the evaluation of a resume for a job",
	Run: func(_ *cobra.Command, args []string) {
		jobID := requireArg(args, 0, "job id")
		resumeID := requireArg(args, 1, "resume id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		ev, err := e.client.EvaluationFor(ctx, jobID, resumeID)
		if err != nil {
			e.logger.Fatal("getting evaluation", zap.Error(err))
		}
		e.out.Evaluation(ev)
	},
}

var evaluationsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search evaluations by score range or verdict",
	Run: func(cmd *cobra.Command, _ []string) {
		verdict, _ := cmd.Flags().GetString("verdict")
		minScore, _ := cmd.Flags().GetInt("min")
		maxScore, _ := cmd.Flags().GetInt("max")
		byRange := cmd.Flags().Changed("min") || cmd.Flags().Changed("max")

		if verdict == "" && !byRange {
			invalid("set --verdict or --min/--max")
		}
		if verdict != "" && byRange {
			invalid("--verdict cannot be combined with --min/--max")
		}

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		var (
			evals []*model.Evaluation
			err   error
		)
		if verdict != "" {
			evals, err = e.client.EvaluationsByVerdict(ctx, verdict, pageFrom(cmd))
		} else {
			evals, err = e.client.EvaluationsByScoreRange(ctx, minScore, maxScore, pageFrom(cmd))
		}
		if err != nil {
			e.logger.Fatal("searching evaluations", zap.Error(err))
		}
		e.out.Evaluations(evals)
	},
}

var evaluationsDeleteCmd = &cobra.Command{
	Use:   "delete <evaluation-id>",
	Short: "Delete an evaluation",
	Run: func(_ *cobra.Command, args []string) {
		id := requireArg(args, 0, "evaluation id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		if err := e.client.DeleteEvaluation(ctx, id); err != nil {
			e.logger.Fatal("deleting evaluation", zap.Error(err))
		}
		e.logger.Info("evaluation deleted", zap.String("evaluation_id", id))
	},
}

func init() {
	rootCmd.AddCommand(evaluationsCmd)
	evaluationsCmd.AddCommand(evaluationsListCmd, evaluationsShowCmd, evaluationsByJobCmd, evaluationsByResumeCmd,
		evaluationsTopCmd, evaluationsForCmd, evaluationsSearchCmd, evaluationsDeleteCmd)

	for _, c := range []*cobra.Command{evaluationsListCmd, evaluationsByJobCmd, evaluationsByResumeCmd, evaluationsSearchCmd} {
		addPageFlags(c)
	}

	evaluationsTopCmd.Flags().Int("limit", 10, "number of evaluations to return")

	evaluationsSearchCmd.Flags().String("verdict", "", "verdict label, e.g. \"Strong Match\"")
	evaluationsSearchCmd.Flags().Int("min", 0, "minimum score")
	evaluationsSearchCmd.Flags().Int("max", 100, "maximum score")
}
