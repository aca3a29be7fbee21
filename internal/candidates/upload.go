package candidates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/model"
	"github.com/spigell/cv-ranker/internal/store"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

var ErrNotPDF = errors.New("only PDF files are accepted")

// UploadFile is a resume file picked by the user.
type UploadFile struct {
	Filename string
	// ContentType is the declared MIME type, if known.
	ContentType string
	Content     []byte
}

// ValidatePDF rejects anything that is not a PDF document. A declared content
// type must be application/pdf; without one the extension must be .pdf. The
// content itself must start like a PDF.
func ValidatePDF(f UploadFile) error {
	if len(f.Content) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrNotPDF, f.Filename)
	}

	if f.ContentType != "" {
		if !strings.EqualFold(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]), pdfContentType) {
			return fmt.Errorf("%w: %s has type %s", ErrNotPDF, f.Filename, f.ContentType)
		}
	} else if !strings.EqualFold(filepath.Ext(f.Filename), ".pdf") {
		return fmt.Errorf("%w: %s has no .pdf extension", ErrNotPDF, f.Filename)
	}

	if sniffed := http.DetectContentType(f.Content); sniffed != pdfContentType {
		return fmt.Errorf("%w: %s looks like %s", ErrNotPDF, f.Filename, sniffed)
	}

	return nil
}

// UploadAndInsert validates and uploads a resume for jobID, then puts it at
// the top of the board when the board shows that job. Nothing is sent when
// validation fails.
func (b *Board) UploadAndInsert(ctx context.Context, f UploadFile, jobID, name, email string) (*model.Resume, error) {
	if err := ValidatePDF(f); err != nil {
		return nil, err
	}
	if jobID == "" {
		return nil, fmt.Errorf("job id is required")
	}

	log := logger.WithCandidate(b.logger, jobID, "", name)

	resume, err := b.src.UploadResume(ctx, store.Upload{
		JobID:         jobID,
		Filename:      f.Filename,
		Content:       f.Content,
		CandidateName: name,
		Email:         email,
	})
	if err != nil {
		log.Error("uploading resume", zap.Error(err))
		return nil, err
	}
	if resume == nil || resume.ID == "" {
		return nil, fmt.Errorf("upload of %s returned no resume", f.Filename)
	}

	b.mu.Lock()
	inserted := false
	if !b.closed && b.jobID == jobID && b.indexOf(resume.ID) < 0 {
		b.rows = append([]Row{{Resume: resume}}, b.rows...)
		inserted = true
	}
	b.mu.Unlock()

	if inserted {
		b.notify()
	}

	log.Info("resume uploaded", zap.String(logger.FieldResumeID, resume.ID), zap.Bool("inserted", inserted))

	return resume, nil
}
