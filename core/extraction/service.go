package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/viserknight/mtss/core"
	"github.com/viserknight/mtss/core/child"
	"github.com/viserknight/mtss/core/user"
)

var (
	// ErrMalformedResponse signals that the model replied with something
	// that is not the JSON shape we demanded. It is surfaced to the
	// operator instead of being swallowed into an empty result set.
	ErrMalformedResponse = errors.New("the extraction service returned a malformed response")

	ErrNoCandidates = errors.New("no learner records could be extracted")
)

const extractSystemPrompt = `You are a data-entry assistant for a school administration system.
You will be given freeform text describing learners to register.
Reply with a single JSON object, and nothing else, of the shape:
{"learners":[{"name":"...","date_of_birth":"YYYY-MM-DD","grade":"...","parent_name":"...","parent_email":"...","parent_phone":"..."}]}
"name" is required for every learner; omit any other field you cannot determine.
Do not invent data that is not present in the text.`

type Service struct {
	aiSvc  core.CompletionService
	chdSvc *child.Service
	usrSvc *user.Service
	logger core.Logger
}

func NewService(aiSvc core.CompletionService, chdSvc *child.Service, usrSvc *user.Service, logger core.Logger) *Service {
	return &Service{
		aiSvc:  aiSvc,
		chdSvc: chdSvc,
		usrSvc: usrSvc,
		logger: logger,
	}
}

// Extract sends the raw text to the completion gateway with a strict
// extraction prompt and parses the reply into candidates. A record missing
// its name is kept but flagged so the operator can fix it before registering.
func (svc *Service) Extract(ctx context.Context, rawText string) ([]Candidate, error) {
	reply, err := svc.aiSvc.Complete(ctx, []core.ChatMessage{
		{Role: "system", Content: extractSystemPrompt},
		{Role: "user", Content: rawText},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Learners []Candidate `json:"learners"`
	}
	if err = json.Unmarshal([]byte(stripCodeFence(reply)), &parsed); err != nil {
		return nil, ErrMalformedResponse
	}

	candidates := parsed.Learners
	for i := range candidates {
		candidates[i].Status = StatusPending
		candidates[i].Message = ""
		if core.CleanString(candidates[i].Name) == "" {
			candidates[i].Status = StatusError
			candidates[i].Message = "missing learner name"
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return candidates, nil
}

// Register materializes candidates as child records in a single sequential
// pass. Each candidate fails or succeeds on its own: one bad row never
// aborts the batch, and the returned copy carries per-row status/message.
func (svc *Service) Register(ctx context.Context, candidates []Candidate) ([]Candidate, error) {
	results := make([]Candidate, len(candidates))
	copy(results, candidates)

	for i := range results {
		cand := &results[i]
		if !(cand.Status == StatusPending || cand.Status == StatusSuccess) {
			continue
		}
		if err := svc.registerOne(ctx, cand); err != nil {
			cand.Status = StatusError
			cand.Message = err.Error()
			continue
		}
		cand.Status = StatusSuccess
		cand.Message = ""
	}
	return results, nil
}

func (svc *Service) registerOne(ctx context.Context, cand *Candidate) error {
	name := core.CleanString(cand.Name)
	if name == "" {
		return errors.New("missing learner name")
	}

	parentID := svc.resolveParent(ctx, cand.ParentEmail)
	dob := parseDOB(cand.DateOfBirth)

	// duplicate guard: re-running a batch must not create the same child twice
	exists, err := svc.chdSvc.Exists(ctx, name, dob, parentID)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("a matching child record already exists")
	}

	nc := child.NewChild{
		Name:  name,
		Grade: core.CleanString(cand.Grade),
	}
	if dob.Valid {
		nc.DateOfBirth = dob.Time
	}
	if parentID.Valid {
		nc.ParentID = parentID.String
	}
	_, err = svc.chdSvc.Create(ctx, nc)
	return err
}

// resolveParent maps an extracted parent email to an existing account id.
// Exact match, first hit wins; no match (or no email) leaves the child
// explicitly unlinked.
func (svc *Service) resolveParent(ctx context.Context, email string) null.String {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return null.String{}
	}
	usr, err := svc.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			svc.logger.Warn("extraction: parent lookup failed", err)
		}
		return null.String{}
	}
	return null.StringFrom(usr.ID)
}

// stripCodeFence unwraps a Markdown-fenced reply ("```json ... ```");
// models add the fence despite being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseDOB(s string) null.Time {
	s = core.CleanString(s)
	if s == "" {
		return null.Time{}
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return null.TimeFrom(t.UTC())
		}
	}
	return null.Time{}
}
