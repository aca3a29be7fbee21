package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spigell/cv-ranker/internal/candidates"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
)

var resumesCmd = &cobra.Command{
	Use:     "resumes",
	Aliases: []string{"resume"},
	Short:   "Manage candidate resumes",
}

var resumesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resumes",
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		var (
			resumes []*model.Resume
			err     error
		)
		if job, _ := cmd.Flags().GetString("job"); job != "" {
			resumes, err = e.client.ResumesByJob(ctx, job, pageFrom(cmd))
		} else {
			resumes, err = e.client.ListResumes(ctx, pageFrom(cmd))
		}
		if err != nil {
			e.logger.Fatal("listing resumes", zap.Error(err))
		}
		e.out.Resumes(resumes)
	},
}

var resumesShowCmd = &cobra.Command{
	Use:   "show <resume-id>",
	Short: "Show a resume",
	Run: func(_ *cobra.Command, args []string) {
		id := requireArg(args, 0, "resume id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		resume, err := e.client.GetResume(ctx, id)
		if err != nil {
			e.logger.Fatal("getting resume", zap.Error(err))
		}
		e.out.Resumes([]*model.Resume{resume})
		if resume.RawText != "" {
			fmt.Printf("\n%s\n", resume.RawText)
		}
	},
}

var resumesUpdateCmd = &cobra.Command{
	Use:   "update <resume-id>",
	Short: "Update candidate details of a resume",
	Run: func(cmd *cobra.Command, args []string) {
		id := requireArg(args, 0, "resume id")

		var patch store.ResumePatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.CandidateName = &name
		}
		if cmd.Flags().Changed("email") {
			email, _ := cmd.Flags().GetString("email")
			patch.Email = &email
		}
		if cmd.Flags().Changed("skills") {
			skills, _ := cmd.Flags().GetStringSlice("skills")
			patch.Skills = &skills
		}
		if patch.CandidateName == nil && patch.Email == nil && patch.Skills == nil {
			invalid("nothing to update: set --name, --email or --skills")
		}

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		resume, err := e.client.UpdateResume(ctx, id, patch)
		if err != nil {
			e.logger.Fatal("updating resume", zap.Error(err))
		}
		e.out.Resumes([]*model.Resume{resume})
	},
}

var resumesDeleteCmd = &cobra.Command{
	Use:   "delete <resume-id>",
	Short: "Delete a resume",
	Run: func(_ *cobra.Command, args []string) {
		id := requireArg(args, 0, "resume id")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		if err := e.client.DeleteResume(ctx, id); err != nil {
			e.logger.Fatal("deleting resume", zap.Error(err))
		}
		e.logger.Info("resume deleted", zap.String("resume_id", id))
	},
}

var resumesSearchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search resumes by candidate name",
	Run: func(cmd *cobra.Command, args []string) {
		name := requireArg(args, 0, "candidate name")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		resumes, err := e.client.SearchResumesByName(ctx, name, pageFrom(cmd))
		if err != nil {
			e.logger.Fatal("searching resumes", zap.Error(err))
		}
		e.out.Resumes(resumes)
	},
}

var resumesUploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF resume for a job",
	Run: func(cmd *cobra.Command, args []string) {
		path := requireArg(args, 0, "resume file")
		jobID, _ := cmd.Flags().GetString("job")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		if jobID == "" {
			invalid("--job is required")
		}

		file, err := readUpload(path)
		if err != nil {
			invalid("%v", err)
		}
		if err := candidates.ValidatePDF(file); err != nil {
			invalid("%v", err)
		}

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		resume, err := e.client.UploadResume(ctx, store.Upload{
			JobID:         jobID,
			Filename:      file.Filename,
			Content:       file.Content,
			CandidateName: name,
			Email:         email,
		})
		if err != nil {
			e.logger.Fatal("uploading resume", zap.Error(err))
		}
		e.logger.Info("resume uploaded", zap.String("resume_id", resume.ID), zap.String("job_id", jobID))
		e.out.Resumes([]*model.Resume{resume})
	},
}

var resumesLinkCmd = &cobra.Command{
	Use:   "link <resume-id> <job-id>",
	Short: "Link a resume to another job",
	Run: func(cmd *cobra.Command, args []string) {
		resumeID := requireArg(args, 0, "resume id")
		jobID := requireArg(args, 1, "job id")
		unlink, _ := cmd.Flags().GetBool("remove")

		e := newEnv()
		ctx, cancel := signalContext()
		defer cancel()

		var err error
		if unlink {
			err = e.client.DissociateJob(ctx, resumeID, jobID)
		} else {
			err = e.client.AssociateJob(ctx, resumeID, jobID)
		}
		if err != nil {
			e.logger.Fatal("changing job link", zap.Error(err))
		}
		e.logger.Info("job link changed",
			zap.String("resume_id", resumeID),
			zap.String("job_id", jobID),
			zap.Bool("removed", unlink),
		)
	},
}

// readUpload reads a local resume file.
func readUpload(path string) (candidates.UploadFile, error) {
	path = strings.TrimSpace(path)
	info, err := os.Stat(path)
	if err != nil {
		return candidates.UploadFile{}, err
	}
	if info.IsDir() {
		return candidates.UploadFile{}, errors.New(path + " is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return candidates.UploadFile{}, err
	}

	return candidates.UploadFile{Filename: filepath.Base(path), Content: data}, nil
}

func init() {
	rootCmd.AddCommand(resumesCmd)
	resumesCmd.AddCommand(resumesListCmd, resumesShowCmd, resumesUpdateCmd, resumesDeleteCmd,
		resumesSearchCmd, resumesUploadCmd, resumesLinkCmd)

	addPageFlags(resumesListCmd)
	addPageFlags(resumesSearchCmd)
	resumesListCmd.Flags().String("job", "", "only resumes linked to this job")

	resumesUpdateCmd.Flags().String("name", "", "candidate name")
	resumesUpdateCmd.Flags().String("email", "", "candidate email")
	resumesUpdateCmd.Flags().StringSlice("skills", nil, "comma separated skills")

	resumesUploadCmd.Flags().String("job", "", "job the resume applies to")
	resumesUploadCmd.Flags().String("name", "", "candidate name, also used to rename the file")
	resumesUploadCmd.Flags().String("email", "", "candidate email")

	resumesLinkCmd.Flags().Bool("remove", false, "remove the link instead of adding it")
}
