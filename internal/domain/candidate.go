package domain

import (
	"context"
	"io"
	"strings"
	"time"
)

type ContactInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

type Sections struct {
	Objective  string `json:"objective"`
	Education  string `json:"education"`
	Skills     string `json:"skills"`
	Projects   string `json:"projects"`
	Experience string `json:"experience"`
}

type Skills struct {
	ProgrammingLanguages []string `json:"programming_languages"`
	FrameworksLibraries  []string `json:"frameworks_libraries"`
	Databases            []string `json:"databases"`
	CloudTools           []string `json:"cloud_tools"`
	OtherSkills          []string `json:"other_skills"`
}

// All returns every skill across categories in a fixed category order.
func (s Skills) All() []string {
	all := make([]string, 0, len(s.ProgrammingLanguages)+len(s.FrameworksLibraries)+
		len(s.Databases)+len(s.CloudTools)+len(s.OtherSkills))
	all = append(all, s.ProgrammingLanguages...)
	all = append(all, s.FrameworksLibraries...)
	all = append(all, s.Databases...)
	all = append(all, s.CloudTools...)
	all = append(all, s.OtherSkills...)
	return all
}

type Entities struct {
	Names         []string `json:"names"`
	Organizations []string `json:"organizations"`
	Dates         []string `json:"dates"`
	Locations     []string `json:"locations"`
}

// CandidateProfile is the structured output of the CV analysis service. It is
// the pseudo-document the scoring engine compares against job descriptions.
type CandidateProfile struct {
	ContactInfo          ContactInfo `json:"contact_info"`
	Sections             Sections    `json:"sections"`
	Skills               Skills      `json:"skills"`
	Entities             Entities    `json:"entities"`
	ExperienceIndicators []string    `json:"experience_indicators"`
	EducationInfo        []string    `json:"education_info"`
}

// IsEmpty reports whether the profile carries nothing that could be scored.
func (p *CandidateProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	if hasText(p.Skills.All()...) || hasText(p.ExperienceIndicators...) || hasText(p.EducationInfo...) {
		return false
	}
	if hasText(p.Entities.Organizations...) {
		return false
	}
	s := p.Sections
	if hasText(s.Objective, s.Education, s.Skills, s.Projects, s.Experience) {
		return false
	}
	return !hasText(p.ContactInfo.GitHub, p.ContactInfo.LinkedIn)
}

func hasText(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// CVAnalysis is a stored analysis of an uploaded CV
type CVAnalysis struct {
	ID           int64            `json:"id"`
	UserID       string           `json:"user_id"`
	FileName     string           `json:"file_name"`
	FileSize     int64            `json:"file_size"`
	FileKey      string           `json:"-"` // object key in the CV bucket
	AnalysisData CandidateProfile `json:"analysis_data"`
	IsActive     bool             `json:"is_active"`
	AnalyzedAt   time.Time        `json:"analyzed_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CVSummary is the short form returned after an upload
type CVSummary struct {
	ID             int64     `json:"id"`
	FileName       string    `json:"file_name"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
	Programming    int       `json:"programming"`
	Frameworks     int       `json:"frameworks"`
	Databases      int       `json:"databases"`
	CloudTools     int       `json:"cloud_tools"`
	HasExperience  bool      `json:"has_experience"`
	EducationLevel string    `json:"education_level"`
	ContactEmail   string    `json:"contact_email"`
}

// CVUpload is an incoming CV file
type CVUpload struct {
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
}

type CVAnalysisRepository interface {
	// Create stores a new active analysis and deactivates older ones for the user.
	Create(ctx context.Context, analysis *CVAnalysis) error
	GetLatestByUserID(ctx context.Context, userID string) (*CVAnalysis, error)
	// DeleteByUserID removes every analysis of the user, active or not, and
	// returns their object keys.
	DeleteByUserID(ctx context.Context, userID string) ([]string, error)
}

// CVAnalyzer is the external document analysis service
type CVAnalyzer interface {
	Analyze(ctx context.Context, fileName string, body io.Reader) (*CandidateProfile, error)
}

// BlobStore stores raw CV files
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type CVUsecase interface {
	UploadCV(ctx context.Context, userID string, upload CVUpload) (*CVSummary, error)
	GetCurrentCV(ctx context.Context, userID string) (*CVAnalysis, error)
	GetCVURL(ctx context.Context, userID string) (string, error)
	// DeleteCV removes the stored file, every analysis and every match record
	// for the user, returning them to the unscored state.
	DeleteCV(ctx context.Context, userID string) error
}
