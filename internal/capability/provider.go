package capability

import (
	"context"

	"lingochat-backend/internal/model"
)

type Availability string

const (
	AvailabilityReadily       Availability = "readily"
	AvailabilityAfterDownload Availability = "after-download"
	AvailabilityNo            Availability = "no"
)

// Detection is the most likely language of a text.
type Detection struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type SummaryStatus string

const (
	SummarySuccess SummaryStatus = "success"
	SummaryError   SummaryStatus = "error"
)

type SummaryResult struct {
	Summary string        `json:"summary"`
	Status  SummaryStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// Capabilities reports which AI capabilities the host supports at all.
type Capabilities struct {
	Translation   bool `json:"translation"`
	Detection     bool `json:"detection"`
	Summarization bool `json:"summarization"`
}

func (c Capabilities) All() bool {
	return c.Translation && c.Detection && c.Summarization
}

// Missing lists the names of unsupported capabilities.
func (c Capabilities) Missing() []string {
	var out []string
	if !c.Translation {
		out = append(out, "translation")
	}
	if !c.Detection {
		out = append(out, "language detection")
	}
	if !c.Summarization {
		out = append(out, "summarization")
	}
	return out
}

// Provider is the AI capability surface the chat store depends on.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	// DetectLanguage returns nil when no language could be detected.
	DetectLanguage(ctx context.Context, text string) (*Detection, error)
	Summarize(ctx context.Context, text string, opts model.SummarizeOptions) (*SummaryResult, error)
	// SummarizeStream calls onChunk with each piece of the summary as it is
	// produced and returns the full summary at the end.
	SummarizeStream(ctx context.Context, text string, opts model.SummarizeOptions, onChunk func(string)) (*SummaryResult, error)
	Capabilities() Capabilities
}
