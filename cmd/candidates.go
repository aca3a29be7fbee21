package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/cv-ranker/internal/candidates"
	"github.com/spigell/cv-ranker/internal/detail"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/ranking"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
)

const (
	PromptEvaluatePending = "Evaluate all pending candidates"
	PromptUpload          = "Upload a resume"
	PromptRefresh         = "Refresh"
	PromptQuit            = "Quit"

	PromptOpen     = "Open details"
	PromptEvaluate = "Evaluate"
	PromptBack     = "Back"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates <job-id>",
	Short: "Show the candidates of a job with their evaluations",
	Run: func(cmd *cobra.Command, args []string) {
		jobID := requireArg(args, 0, "job id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		if err := runCandidates(ctx, cmd, e, jobID); err != nil {
			e.logger.Fatal("showing candidates", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().Int("min-score", 0, "hide evaluated candidates scoring below this value")
	candidatesCmd.Flags().StringSlice("verdict", nil, "only show evaluated candidates with these verdicts")
	candidatesCmd.Flags().Bool("evaluated-only", false, "hide candidates without an evaluation")
	candidatesCmd.Flags().Bool("rank", false, "order candidates by score")
	candidatesCmd.Flags().Bool("evaluate-missing", false, "evaluate every candidate without an evaluation")
	candidatesCmd.Flags().BoolP("interactive", "i", false, "browse candidates interactively")
	candidatesCmd.Flags().Duration("wait", 0, "how long to wait for evaluations (default from candidates.wait)")
	candidatesCmd.Flags().Int("concurrency", 0, "parallel evaluation requests (default from candidates.concurrency)")

	viper.BindPFlag("ranking.minimum-score", candidatesCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("ranking.verdicts", candidatesCmd.Flags().Lookup("verdict"))
	viper.BindPFlag("ranking.evaluated-only", candidatesCmd.Flags().Lookup("evaluated-only"))
	viper.BindPFlag("candidates.wait", candidatesCmd.Flags().Lookup("wait"))
	viper.BindPFlag("candidates.concurrency", candidatesCmd.Flags().Lookup("concurrency"))
}

func runCandidates(ctx context.Context, cmd *cobra.Command, e *env, jobID string) error {
	job, err := e.client.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	board := candidates.NewBoard(e.client, e.logger,
		candidates.WithConcurrency(e.config.Candidates.Concurrency),
		candidates.WithPage(store.Page{Limit: e.config.Candidates.Limit}),
	)
	defer board.Close()

	steps := rankingSteps(e.config.Ranking)
	rankRows, _ := cmd.Flags().GetBool("rank")
	evaluateMissing, _ := cmd.Flags().GetBool("evaluate-missing")
	interactive, _ := cmd.Flags().GetBool("interactive")

	for _, st := range ranking.Describe(steps) {
		e.logger.Debug("filter configured",
			zap.String("name", st.Name),
			zap.Bool("enabled", st.Enabled),
			zap.String("reason", st.Reason),
			zap.Any("details", st.Details),
		)
	}

	show := func() error {
		rows, err := ranking.Run(ctx, e.logger, steps, board.Snapshot().Rows)
		if err != nil {
			return err
		}
		if rankRows {
			rows = ranking.Rank(rows)
		}

		fmt.Printf("\n%s (%s)\n", job.Title, job.ID)
		e.out.Candidates(rows)

		total, evaluated, evaluating := board.Snapshot().Counts()
		fmt.Printf("%d candidates, %d evaluated, %d being evaluated, %d shown\n",
			total, evaluated, evaluating, len(rows))
		return nil
	}

	load := func() error {
		if err := board.Load(ctx, jobID); err != nil {
			return err
		}
		waitEvaluations(ctx, e, board)
		return nil
	}

	if err := load(); err != nil {
		return err
	}
	if evaluateMissing {
		n := board.EvaluatePending(ctx)
		e.logger.Info("evaluated missing candidates", zap.Int("count", n))
	}
	if err := show(); err != nil {
		return err
	}

	if !interactive {
		return nil
	}

	loader := detail.NewLoader(e.client, e.logger)

	for {
		if ctx.Err() != nil {
			return nil
		}

		rows, err := ranking.Run(ctx, e.logger, steps, board.Snapshot().Rows)
		if err != nil {
			return err
		}
		if rankRows {
			rows = ranking.Rank(rows)
		}

		items := make([]string, 0, len(rows)+4)
		for _, row := range rows {
			items = append(items, candidateLabel(row))
		}
		items = append(items, PromptEvaluatePending, PromptUpload, PromptRefresh, PromptQuit)

		p := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: items,
			Size:  15,
		}
		_, selected, err := p.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch selected {
		case PromptQuit:
			return nil
		case PromptRefresh:
			if err := load(); err != nil {
				return err
			}
		case PromptEvaluatePending:
			n := board.EvaluatePending(ctx)
			e.logger.Info("evaluated pending candidates", zap.Int("count", n))
		case PromptUpload:
			uploadInteractive(ctx, e, board, jobID)
		default:
			resumeID := strings.Split(selected, " ")[0]
			if err := candidateMenu(ctx, e, board, loader, jobID, resumeID); err != nil {
				return err
			}
		}

		if err := show(); err != nil {
			return err
		}
	}
}

// waitEvaluations blocks until background fetches finish or the configured wait runs out.
func waitEvaluations(ctx context.Context, e *env, board *candidates.Board) {
	wait := e.config.Candidates.Wait
	if wait <= 0 {
		wait = 30 * time.Second
	}

	wctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := board.Wait(wctx); err != nil {
		e.logger.Warn("evaluations are still loading", zap.Duration("waited", wait), zap.Error(err))
	}
}

func rankingSteps(cfg *RankingConfig) []ranking.Filter {
	steps := []ranking.Filter{
		ranking.NewMinScore(cfg.MinimumScore),
		ranking.NewVerdicts(cfg.Verdicts...),
		ranking.NewEvaluatedOnly(),
	}

	if cfg.MinimumScore <= 0 {
		ranking.DisableByName(steps, "min_score", "no minimum score set")
	}
	if !cfg.EvaluatedOnly {
		ranking.DisableByName(steps, "evaluated_only", "not requested")
	}

	return steps
}

func candidateLabel(row candidates.Row) string {
	name := "unknown"
	if row.Resume != nil && row.Resume.CandidateName != "" {
		name = row.Resume.CandidateName
	}

	state := "not evaluated"
	switch {
	case row.Evaluating:
		state = "evaluating..."
	case row.Evaluated():
		state = fmt.Sprintf("%d %s", row.Evaluation.Score, row.Evaluation.Verdict)
	}

	return fmt.Sprintf("%s %s / %s", row.ID(), name, state)
}

func candidateMenu(ctx context.Context, e *env, board *candidates.Board, loader *detail.Loader, jobID, resumeID string) error {
	row, ok := board.Snapshot().Row(resumeID)
	if !ok {
		return fmt.Errorf("there is no such candidate %s", resumeID)
	}

	p := promptui.Select{
		Label: candidateLabel(row),
		Items: []string{PromptOpen, PromptEvaluate, PromptBack},
	}
	_, selected, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return nil
		}
		return err
	}

	switch selected {
	case PromptOpen:
		view, err := loader.Open(ctx, detail.Request{
			ResumeID: resumeID,
			JobID:    jobID,
			State:    detail.Carry(row.Evaluation),
		})
		if err != nil {
			color.New(color.FgRed).Fprintln(os.Stderr, err)
			return nil
		}
		e.out.Detail(view)
	case PromptEvaluate:
		ev, err := board.Evaluate(ctx, resumeID)
		if err != nil {
			color.New(color.FgRed).Fprintln(os.Stderr, err)
			return nil
		}
		e.out.Evaluation(ev)
	}

	return nil
}

func uploadInteractive(ctx context.Context, e *env, board *candidates.Board, jobID string) {
	path, err := (&promptui.Prompt{
		Label: "Path to the PDF resume",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("path is required")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return
	}

	file, err := readUpload(path)
	if err == nil {
		err = candidates.ValidatePDF(file)
	}
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		return
	}

	name, err := (&promptui.Prompt{Label: "Candidate name (optional)"}).Run()
	if err != nil {
		return
	}
	email, err := (&promptui.Prompt{Label: "Candidate email (optional)"}).Run()
	if err != nil {
		return
	}

	resume, err := board.UploadAndInsert(ctx, file, jobID, strings.TrimSpace(name), strings.TrimSpace(email))
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		return
	}

	e.out.Resumes([]*model.Resume{resume})
}
