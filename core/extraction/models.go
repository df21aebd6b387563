package extraction

import "github.com/viserknight/mtss/core"

// Candidate statuses.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Candidate is a learner record extracted from freeform text. Candidates
// are transient: they live in the operator's session between the extract
// and register steps and are never stored verbatim.
type Candidate struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth,omitempty"` // YYYY-MM-DD when the model could tell
	Grade       string `json:"grade,omitempty"`
	ParentName  string `json:"parent_name,omitempty"`
	ParentEmail string `json:"parent_email,omitempty"`
	ParentPhone string `json:"parent_phone,omitempty"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
}

// ExtractRequest carries the raw document text pasted or uploaded by an admin.
type ExtractRequest struct {
	Text string `json:"text" validate:"required"`
}

func (er *ExtractRequest) Validate() error {
	er.Text = core.CleanString(er.Text)
	return core.Validate.Struct(er)
}

// RegisterRequest carries the (possibly operator-edited) candidate list back
// for materialization.
type RegisterRequest struct {
	Candidates []Candidate `json:"candidates" validate:"required,min=1"`
}

func (rr *RegisterRequest) Validate() error {
	return core.Validate.Struct(rr)
}
