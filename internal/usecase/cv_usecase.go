package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/analysis"
	"go-jobmatch-backend/pkg/apperror"
	"go-jobmatch-backend/pkg/audit"
	"go-jobmatch-backend/pkg/logger"
	"go-jobmatch-backend/pkg/security"
	"go-jobmatch-backend/pkg/security/antivirus"
	"go-jobmatch-backend/pkg/storage"
)

type cvUsecase struct {
	cvRepo    domain.CVAnalysisRepository
	matchRepo domain.MatchRepository
	analyzer  domain.CVAnalyzer
	blobs     domain.BlobStore
	scanner   antivirus.Scanner
	audit     *audit.Logger
	maxBytes  int64
	urlTTL    time.Duration
}

func NewCVUsecase(
	cvRepo domain.CVAnalysisRepository,
	matchRepo domain.MatchRepository,
	analyzer domain.CVAnalyzer,
	blobs domain.BlobStore,
	scanner antivirus.Scanner,
	auditLog *audit.Logger,
	maxBytes int64,
	urlTTL time.Duration,
) domain.CVUsecase {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	return &cvUsecase{
		cvRepo:    cvRepo,
		matchRepo: matchRepo,
		analyzer:  analyzer,
		blobs:     blobs,
		scanner:   scanner,
		audit:     auditLog,
		maxBytes:  maxBytes,
		urlTTL:    urlTTL,
	}
}

// requireOwner checks the authenticated user in ctx against userID
func requireOwner(ctx context.Context, userID string) error {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if ctxUserID != userID {
		return apperror.Forbidden("You can only access your own CV")
	}
	return nil
}

func (u *cvUsecase) UploadCV(ctx context.Context, userID string, upload domain.CVUpload) (*domain.CVSummary, error) {
	if err := requireOwner(ctx, userID); err != nil {
		return nil, err
	}
	if upload.Size > u.maxBytes {
		return nil, apperror.TooLarge(fmt.Sprintf("File size too large. Maximum size is %dMB", u.maxBytes>>20))
	}

	// buffered once: the analyzer and the blob store both read it
	data, err := io.ReadAll(io.LimitReader(upload.Body, u.maxBytes+1))
	if err != nil {
		return nil, apperror.BadRequest("Could not read uploaded file")
	}
	if int64(len(data)) > u.maxBytes {
		return nil, apperror.TooLarge(fmt.Sprintf("File size too large. Maximum size is %dMB", u.maxBytes>>20))
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("No file provided")
	}
	if _, err := security.ValidatePDF(upload.FileName, data); err != nil {
		return nil, apperror.New(http.StatusBadRequest, "Only PDF files are supported", err)
	}

	scan, err := u.scanner.Scan(ctx, upload.FileName, data)
	if err != nil {
		return nil, apperror.BadGateway("Failed to scan CV", err)
	}
	if scan.Infected {
		u.audit.Log(ctx, audit.Event{Type: audit.EventCVRejected, UserID: userID, Details: map[string]interface{}{
			"scanner": scan.ScannerName,
			"threat":  scan.ThreatName,
		}})
		return nil, apperror.BadRequest("File rejected by malware scan")
	}

	profile, err := u.analyzer.Analyze(ctx, upload.FileName, bytes.NewReader(data))
	if err != nil {
		var rejected *analysis.RejectedError
		if errors.As(err, &rejected) {
			return nil, apperror.New(http.StatusBadRequest, rejected.Detail, err)
		}
		return nil, apperror.BadGateway("Failed to analyze CV", err)
	}

	key := storage.CVKey(userID, upload.FileName)
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if err := u.blobs.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, apperror.BadGateway("Failed to store CV", err)
	}

	record := &domain.CVAnalysis{
		UserID:       userID,
		FileName:     upload.FileName,
		FileSize:     int64(len(data)),
		FileKey:      key,
		AnalysisData: *profile,
	}
	if err := u.cvRepo.Create(ctx, record); err != nil {
		if delErr := u.blobs.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("orphaned cv object", "key", key, "error", delErr)
		}
		return nil, apperror.Internal(err)
	}

	u.audit.Log(ctx, audit.Event{Type: audit.EventCVUploaded, UserID: userID, Details: map[string]interface{}{
		"analysis_id": record.ID,
		"size":        record.FileSize,
	}})

	return summarize(record), nil
}

func summarize(a *domain.CVAnalysis) *domain.CVSummary {
	p := a.AnalysisData
	education := "Not specified"
	if len(p.EducationInfo) > 0 {
		education = p.EducationInfo[0]
	}
	return &domain.CVSummary{
		ID:             a.ID,
		FileName:       a.FileName,
		AnalyzedAt:     a.AnalyzedAt,
		Programming:    len(p.Skills.ProgrammingLanguages),
		Frameworks:     len(p.Skills.FrameworksLibraries),
		Databases:      len(p.Skills.Databases),
		CloudTools:     len(p.Skills.CloudTools),
		HasExperience:  len(p.ExperienceIndicators) > 0,
		EducationLevel: education,
		ContactEmail:   p.ContactInfo.Email,
	}
}

func (u *cvUsecase) GetCurrentCV(ctx context.Context, userID string) (*domain.CVAnalysis, error) {
	if err := requireOwner(ctx, userID); err != nil {
		return nil, err
	}
	a, err := u.cvRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("No CV uploaded yet")
		}
		return nil, apperror.Internal(err)
	}
	return a, nil
}

func (u *cvUsecase) GetCVURL(ctx context.Context, userID string) (string, error) {
	a, err := u.GetCurrentCV(ctx, userID)
	if err != nil {
		return "", err
	}
	url, err := u.blobs.SignedURL(ctx, a.FileKey, u.urlTTL)
	if err != nil {
		return "", apperror.BadGateway("Failed to sign CV url", err)
	}
	return url, nil
}

func (u *cvUsecase) DeleteCV(ctx context.Context, userID string) error {
	if err := requireOwner(ctx, userID); err != nil {
		return err
	}

	matches, err := u.matchRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return apperror.Internal(err)
	}
	keys, err := u.cvRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return apperror.Internal(err)
	}
	if len(keys) == 0 {
		return apperror.NotFound("No CV uploaded yet")
	}

	// every upload, including superseded ones, owns its own object
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}
		if err := u.blobs.Delete(ctx, key); err != nil {
			logger.Log.Warn("failed to delete cv object", "key", key, "error", err)
		}
	}

	u.audit.Log(ctx, audit.Event{Type: audit.EventCVDeleted, UserID: userID, Details: map[string]interface{}{
		"analyses": len(keys),
		"matches":  matches,
	}})
	return nil
}
