package model

import (
	"time"

	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
)

// Review is one contract-review session: the decoded document text plus
// the analysis results accumulated by the user. Zone, Compliance and
// Opinion are replaced wholesale on every re-run, never patched.
type Review struct {
	ID            string                      `json:"id"`
	Username      string                      `json:"username"`
	Filename      string                      `json:"filename,omitempty"`
	Text          string                      `json:"text,omitempty"`
	SourceURL     string                      `json:"source_url,omitempty"`
	Extraction    *analyzer.ExtractionResult  `json:"extraction,omitempty"`
	Zone          *analyzer.ZoneDecision      `json:"zone,omitempty"`
	Compliance    *analyzer.ComplianceResult  `json:"compliance,omitempty"`
	Opinion       string                      `json:"opinion,omitempty"`
	OpinionStatus string                      `json:"opinion_status,omitempty"`
	ErrorMsg      string                      `json:"error_msg,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// Opinion status constants.
const (
	OpinionPending    = "pending"
	OpinionProcessing = "processing"
	OpinionCompleted  = "completed"
	OpinionFailed     = "failed"
)
