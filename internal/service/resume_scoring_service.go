package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Hireflow/config"
	"github.com/lshigami/Hireflow/internal/repository"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ResumeEntry is one candidate's parsed résumé inside a screening batch.
type ResumeEntry struct {
	ApplicationID uint
	CandidateName string
	ResumeText    string
}

// ResumeScoringJob is the batch submitted when a RESUME_SCREENING step
// activates. Prompt lists and skills come from the pipeline configuration.
type ResumeScoringJob struct {
	PipelineID      uint
	PipelineTitle   string
	PositivePrompts []string
	NegativePrompts []string
	Skills          []string
	Resumes         []ResumeEntry
}

// ResumeScoringService scores résumés against a job context. Submission is
// fire-and-forget from the workflow's point of view; scores land on the
// application records as they come back.
type ResumeScoringService interface {
	SubmitBatch(ctx context.Context, job ResumeScoringJob) error
}

type geminiResumeScoringService struct {
	client  *genai.GenerativeModel
	appRepo repository.ApplicationRepository
}

func NewResumeScoringService(cfg *config.Config, appRepo repository.ApplicationRepository) (ResumeScoringService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. ResumeScoringService will be non-functional.")
		return &geminiResumeScoringService{client: nil, appRepo: appRepo}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiResumeScoringService{
		client:  client.GenerativeModel("gemini-1.5-flash"),
		appRepo: appRepo,
	}, nil
}

func (s *geminiResumeScoringService) SubmitBatch(ctx context.Context, job ResumeScoringJob) error {
	if s.client == nil {
		log.Warn().Uint("pipelineID", job.PipelineID).Msg("SubmitBatch: Gemini client not initialized, skipping ATS scoring")
		return nil
	}
	if len(job.Resumes) == 0 {
		log.Warn().Uint("pipelineID", job.PipelineID).Msg("SubmitBatch: no resumes to score")
		return nil
	}

	jobContext := buildJobContext(job)
	for _, resume := range job.Resumes {
		score, err := s.scoreResume(ctx, jobContext, resume)
		if err != nil {
			log.Error().Err(err).
				Uint("applicationID", resume.ApplicationID).
				Msg("SubmitBatch: failed to score resume, leaving ATS score empty")
			continue
		}
		app, err := s.appRepo.FindByID(resume.ApplicationID)
		if err != nil {
			log.Error().Err(err).Uint("applicationID", resume.ApplicationID).Msg("SubmitBatch: application vanished before score write")
			continue
		}
		app.ATSScore = &score
		if err := s.appRepo.Save(app); err != nil {
			log.Error().Err(err).Uint("applicationID", resume.ApplicationID).Msg("SubmitBatch: failed to persist ATS score")
		}
	}
	return nil
}

func buildJobContext(job ResumeScoringJob) string {
	var b strings.Builder
	b.WriteString("You are an expert technical recruiter screening resumes for the position: ")
	b.WriteString(job.PipelineTitle)
	b.WriteString(".\n")
	if len(job.Skills) > 0 {
		b.WriteString("Required skills: " + strings.Join(job.Skills, ", ") + ".\n")
	}
	if len(job.PositivePrompts) > 0 {
		b.WriteString("Reward resumes that match: " + strings.Join(job.PositivePrompts, "; ") + ".\n")
	}
	if len(job.NegativePrompts) > 0 {
		b.WriteString("Penalize resumes that match: " + strings.Join(job.NegativePrompts, "; ") + ".\n")
	}
	b.WriteString(`
Score the candidate's resume from 0 to 100 for fit against the above.
Format your response strictly as:
Score: [number]
`)
	return b.String()
}

func (s *geminiResumeScoringService) scoreResume(ctx context.Context, jobContext string, resume ResumeEntry) (float64, error) {
	var prompt strings.Builder
	prompt.WriteString(jobContext)
	prompt.WriteString("\nCandidate: " + resume.CandidateName + "\nResume:\n---\n")
	prompt.WriteString(resume.ResumeText)
	prompt.WriteString("\n---\n")

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return 0, fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("gemini returned no content")
	}

	raw := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw += string(txt)
		}
	}
	return parseAtsScore(raw)
}

func parseAtsScore(raw string) (float64, error) {
	const prefix = "Score:"
	idx := strings.Index(raw, prefix)
	if idx == -1 {
		return 0, fmt.Errorf("response does not contain %q prefix. Raw: %s", prefix, raw)
	}
	rest := strings.TrimSpace(raw[idx+len(prefix):])
	if end := strings.IndexByte(rest, '\n'); end != -1 {
		rest = strings.TrimSpace(rest[:end])
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty score in response")
	}
	score, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse score value %q: %w", fields[0], err)
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score, nil
}
