package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
)

var jobsCmd = &cobra.Command{
	Use:     "jobs",
	Aliases: []string{"job"},
	Short:   "Manage job descriptions",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job descriptions",
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		jobs, err := e.client.ListJobs(ctx, pageFrom(cmd))
		if err != nil {
			e.logger.Fatal("listing job descriptions", zap.Error(err))
		}
		e.out.Jobs(jobs)
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job description",
	Run: func(_ *cobra.Command, args []string) {
		id := requireArg(args, 0, "job id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		job, err := e.client.GetJob(ctx, id)
		if err != nil {
			e.logger.Fatal("getting job description", zap.Error(err))
		}
		printJob(job)
	},
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		title, _ := cmd.Flags().GetString("title")
		inline, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("text-file")
		if title == "" {
			invalid("--title is required")
		}

		text, err := readText(inline, file)
		if err != nil {
			invalid("%v", err)
		}

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		job, err := e.client.CreateJob(ctx, store.JobInput{Title: title, Text: text})
		if err != nil {
			e.logger.Fatal("creating job description", zap.Error(err))
		}
		e.logger.Info("job description created", zap.String("job_id", job.ID))
		printJob(job)
	},
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update <job-id>",
	Short: "Update the title or text of a job description",
	Run: func(cmd *cobra.Command, args []string) {
		id := requireArg(args, 0, "job id")

		var patch store.JobPatch
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			patch.Title = &title
		}
		if cmd.Flags().Changed("text") || cmd.Flags().Changed("text-file") {
			inline, _ := cmd.Flags().GetString("text")
			file, _ := cmd.Flags().GetString("text-file")
			text, err := readText(inline, file)
			if err != nil {
				invalid("%v", err)
			}
			patch.Text = &text
		}
		if patch.Title == nil && patch.Text == nil {
			invalid("nothing to update: set --title, --text or --text-file")
		}

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		job, err := e.client.UpdateJob(ctx, id, patch)
		if err != nil {
			e.logger.Fatal("updating job description", zap.Error(err))
		}
		printJob(job)
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job description",
	Run: func(_ *cobra.Command, args []string) {
		id := requireArg(args, 0, "job id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		if err := e.client.DeleteJob(ctx, id); err != nil {
			e.logger.Fatal("deleting job description", zap.Error(err))
		}
		e.logger.Info("job description deleted", zap.String("job_id", id))
	},
}

var jobsSearchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search job descriptions by title",
	Run: func(cmd *cobra.Command, args []string) {
		title := requireArg(args, 0, "title")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		jobs, err := e.client.SearchJobs(ctx, title, pageFrom(cmd))
		if err != nil {
			e.logger.Fatal("searching job descriptions", zap.Error(err))
		}
		e.out.Jobs(jobs)
	},
}

func printJob(job *model.JobDescription) {
	fmt.Printf("%s\n%s\n\n%s\n", job.Title, job.ID, job.Text)
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsCreateCmd, jobsUpdateCmd, jobsDeleteCmd, jobsSearchCmd)

	addPageFlags(jobsListCmd)
	addPageFlags(jobsSearchCmd)

	for _, c := range []*cobra.Command{jobsCreateCmd, jobsUpdateCmd} {
		c.Flags().String("title", "", "job title")
		c.Flags().String("text", "", "job description text")
		c.Flags().String("text-file", "", "read the job description text from a file")
	}
}
